package eventlog

import "errors"

// Sentinel kinds for event log errors.
var (
	ErrLogClosed = errors.New("event log closed")
)
