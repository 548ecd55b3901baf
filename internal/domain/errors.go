package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConflict   = errors.New("account already exists")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

type AuthErrorKind int

const (
	InvalidCredentials AuthErrorKind = iota + 1
	InvalidToken
	Revoked
)

func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case InvalidToken:
		return "invalid token"
	case Revoked:
		return "token revoked"
	default:
		return "unknown auth error"
	}
}

// AuthError is matched by kind: errors.Is(err, domain.ErrRevoked).
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}
	ErrInvalidToken       = &AuthError{Kind: InvalidToken}
	ErrRevoked            = &AuthError{Kind: Revoked}
)

func NewAuthError(kind AuthErrorKind, cause error) *AuthError {
	return &AuthError{Kind: kind, Err: cause}
}

// StoreError wraps a persistence failure, timeouts included.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
