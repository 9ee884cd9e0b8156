package service

import "errors"

// Sentinel error kinds for service operations.
var (
	ErrInvalidAthlete = errors.New("invalid athlete")
	ErrInvalidSample  = errors.New("invalid growth sample")
)
