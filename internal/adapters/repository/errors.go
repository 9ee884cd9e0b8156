package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("athlete not found")
	ErrDuplicateID    = errors.New("duplicate athlete id")
	ErrInvalidAthlete = errors.New("invalid athlete")
)
