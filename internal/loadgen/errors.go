package loadgen

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid load config")
	// ErrUnexpectedStatus is returned when the service answers with a status the step does not accept.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrVerification is returned when the final consistency checks fail.
	ErrVerification = errors.New("verification failed")
)
