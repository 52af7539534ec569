package app

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned on a failed login. The API layer answers
// with the same message whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports a rejected request field. The API layer renders it
// as a 400 with the field name and message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateSubscriptionError carries the id of the already-live subscription
// so the API can point the caller at it.
type DuplicateSubscriptionError struct {
	ExistingID uuid.UUID
}

func (e *DuplicateSubscriptionError) Error() string {
	return fmt.Sprintf("a live subscription to this plan already exists: %s", e.ExistingID)
}
