package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name: "error with field",
			err: ValidationError{
				Field:   "listen",
				Value:   "",
				Message: "cannot be empty",
			},
			expected: "validation error for field 'listen': cannot be empty",
		},
		{
			name: "error without field",
			err: ValidationError{
				Message: "invalid format",
			},
			expected: "validation error: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidatorChain(t *testing.T) {
	chain := NewValidatorChain(NotEmpty("listen")).Add(ListenAddress("listen"))

	assert.NoError(t, chain.Validate(":8080"))
	assert.NoError(t, chain.Validate("127.0.0.1:0"))

	err := chain.Validate(" ")
	assert.EqualError(t, err, "validation error for field 'listen': cannot be empty")

	err = chain.Validate("8080")
	assert.ErrorContains(t, err, "is not a listen address")
}

func TestAtLeast(t *testing.T) {
	v := AtLeast("cache_size", 1)
	assert.NoError(t, v(1))
	assert.EqualError(t, v(0), "validation error for field 'cache_size': must be at least 1")
}

func TestNoWhitespace(t *testing.T) {
	v := NoWhitespace("root")
	assert.NoError(t, v("example.com/app"))
	assert.Error(t, v("example.com/my app"))
	assert.Error(t, v("a\tb"))
}
