package models

import "fmt"

// InvalidInputError reports a value that failed validation. It carries the
// offending input and a human-readable reason so callers can surface both
// without string-matching the error text.
type InvalidInputError struct {
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Value, e.Reason)
}

func invalidInput(value, reason string) *InvalidInputError {
	return &InvalidInputError{Value: value, Reason: reason}
}
