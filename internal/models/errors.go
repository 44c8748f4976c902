package models

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrAuditNotFound        = errors.New("audit record not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)

// ValidationError rejects a malformed request before any Payment record
// exists. It is the only failure that produces neither payment nor audit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
