package ml

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrArtifactLoad         = errors.New("artifact load failure")
	ErrClassifierInvocation = errors.New("classifier invocation failure")
)

// InvalidInputError names the field whose value is outside its declared domain.
type InvalidInputError struct {
	Field string
	Value interface{}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: field %q has unsupported value %v", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(field string, value interface{}) error {
	return &InvalidInputError{Field: field, Value: value}
}

func artifactError(path, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrArtifactLoad, path, fmt.Sprintf(format, args...))
}
