package service

import (
	"errors"
	"fmt"
)

// ErrNotFound marks missing games, players, properties or trades.
var ErrNotFound = errors.New("not found")

// ValidationError is a precondition rejection: the transaction was
// rolled back with zero side effects and the reason is safe to show
// the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func rejectf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a precondition rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
