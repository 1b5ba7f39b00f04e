package utils

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		return nil
	}
}

// AtLeast validates that an int is not below min
func AtLeast(field string, min int) Validator[int] {
	return func(value int) error {
		if value < min {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must be at least %d", min),
			}
		}
		return nil
	}
}

// ListenAddress validates a host:port address such as ":8080"
func ListenAddress(field string) Validator[string] {
	return func(value string) error {
		if _, _, err := net.SplitHostPort(value); err != nil {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("is not a listen address: %v", err),
			}
		}
		return nil
	}
}

// NoWhitespace validates that a string contains no spaces or tabs. Package
// path markers and record fields are tab separated.
func NoWhitespace(field string) Validator[string] {
	return func(value string) error {
		if strings.ContainsAny(value, " \t\n") {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot contain whitespace",
			}
		}
		return nil
	}
}
