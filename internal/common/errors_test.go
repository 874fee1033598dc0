package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("bucket unreachable")
	err := WrapError(ErrorValidation, "Avatar file is required", cause)

	assert.ErrorIs(t, err, ErrorValidation)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrorNotFound)
	assert.Equal(t, "Avatar file is required: bucket unreachable", err.Error())
}

func TestError_WrappedByFmt(t *testing.T) {
	err := fmt.Errorf("register: %w", Conflict("User already exists"))

	assert.ErrorIs(t, err, ErrorAlreadyExists)
	assert.Equal(t, "User already exists", Message(err, "fallback"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", Message(NewError(ErrorInternal, ""), "fallback"))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, ErrorInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Something went wrong", Message(err, ""))
}

func TestHelpers_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"invalid", Invalid("x"), ErrorValidation},
		{"not found", NotFound("x"), ErrorNotFound},
		{"conflict", Conflict("x"), ErrorAlreadyExists},
		{"unauthorized", Unauthorized("x"), ErrorUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
		})
	}
}
