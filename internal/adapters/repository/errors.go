package repository

import "errors"

// Sentinel kinds for buffer errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid player record")
)
