package model

import "errors"

// Sentinel kinds for submission validation errors. All of them map to a
// rejected, non-retryable submission.
var (
	ErrUnknownEventType  = errors.New("unknown event type")
	ErrMissingEntityID   = errors.New("missing entity id")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrInvalidActorID    = errors.New("invalid actor id")
	ErrNegativeWatchMs   = errors.New("negative watch duration")
	ErrMetadataTooLarge  = errors.New("metadata has too many keys")
	ErrMetadataValueKind = errors.New("metadata value must be string, number or boolean")
)
