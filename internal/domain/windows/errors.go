package windows

import "errors"

// Sentinel kinds for window errors.
var (
	ErrInvalidDefinition = errors.New("invalid window definition")
)
