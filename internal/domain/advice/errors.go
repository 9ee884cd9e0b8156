package advice

import "errors"

// ErrUnknownReason is returned by Render for a reason with no message.
var ErrUnknownReason = errors.New("unknown advice reason")
