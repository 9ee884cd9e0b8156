package roster

import "errors"

// Sentinel error kinds for roster loading.
var (
	ErrReadRoster    = errors.New("read roster failed")
	ErrInvalidRoster = errors.New("invalid roster")
)
