package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned by operations that need a buyer or vendor identity
	ErrNotLoggedIn = errors.New("user is not logged in")
	// ErrEmptyCart is returned when checking out without items
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTentNotFound is returned when a stall is not among the user's stalls
	ErrTentNotFound = errors.New("tent not found")
)

// ValidationError reports invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Invalid builds a ValidationError
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
