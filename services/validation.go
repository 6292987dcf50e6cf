package services

import "errors"

// ValidationError marks caller input that violates a contract. The route
// layer maps it to 400; nothing in the services silently corrects input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
