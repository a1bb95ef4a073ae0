package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrPaymentNotFound is returned before any transaction is opened when
	// the payment id does not resolve.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrRegistrationNotFound is returned when a manual payment references
	// an unknown registration.
	ErrRegistrationNotFound = errors.New("registration not found")
)

// ValidationError is an expected business-rule violation: illegal status
// transition, bad amount, missing due date. It always rolls back the
// enclosing transaction and never produces an audit record.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
