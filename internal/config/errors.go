package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr    = errors.New("addr must not be empty")
	ErrEmptyLogPath = errors.New("event_log_path must not be empty")
)
