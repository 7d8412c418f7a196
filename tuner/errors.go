package tuner

import "errors"

var (
	ErrNoSource      = errors.New("no frame source configured")
	ErrUnknownTuning = errors.New("unknown tuning")
	ErrUnknownString = errors.New("unknown string")

	// ErrAlreadySubscribed is returned by frame sources that accept a single handler.
	ErrAlreadySubscribed = errors.New("frame source already has a subscriber")
	ErrNilHandler        = errors.New("nil frame handler")
)
