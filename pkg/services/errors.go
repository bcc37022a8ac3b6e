package services

import "fmt"

// ValidationError reports a client-supplied input that fails a
// precondition checked before any task is started. The HTTP façade
// maps it to 400 rather than letting it reach the task/event machinery.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
