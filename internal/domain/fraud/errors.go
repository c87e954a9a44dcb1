package fraud

import "errors"

// Sentinel kinds for fraud scoring errors.
var (
	ErrTooManyEvents = errors.New("too many events")
)
