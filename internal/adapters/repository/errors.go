package repository

import "errors"

// Sentinel kinds for aggregate store errors.
var (
	ErrNotFound        = errors.New("entity not tracked")
	ErrCorruptSnapshot = errors.New("corrupt aggregate snapshot")
)
