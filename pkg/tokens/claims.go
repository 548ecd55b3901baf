package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

var (
	ErrUnexpectedSignMethod = errors.New("unexpected sign method")
	ErrWrongKind            = errors.New("wrong token kind")
	ErrMissingID            = errors.New("token has no jti")
	ErrMissingSubject       = errors.New("token has no subject")
)

// Claims is shared by access and refresh tokens; Type tells them apart.
type Claims struct {
	Type    Kind   `json:"typ"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"adm,omitempty"`
	jwt.RegisteredClaims
}
