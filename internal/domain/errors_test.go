package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthError_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("logout: %w", NewAuthError(Revoked, errors.New("jti abc")))

	assert.ErrorIs(t, err, ErrRevoked)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "token revoked")
}

func TestAuthError_UnwrapsCause(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := NewAuthError(InvalidToken, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStoreError_WrapsAndUnwraps(t *testing.T) {
	err := NewStoreError("find account", context.DeadlineExceeded)

	assert.True(t, IsStoreError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "store find account: context deadline exceeded", err.Error())

	assert.Same(t, err, NewStoreError("outer", err))
	assert.Nil(t, NewStoreError("noop", nil))
	assert.False(t, IsStoreError(ErrConflict))
}
