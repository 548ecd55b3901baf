package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Subject struct {
	ID      string
	Role    string
	IsAdmin bool
}

type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) newID() string {
	if i.NewID != nil {
		return i.NewID()
	}
	return uuid.NewString()
}

func (i *Issuer) secret(kind Kind) ([]byte, error) {
	switch kind {
	case KindAccess:
		return i.AccessSecret, nil
	case KindRefresh:
		return i.RefreshSecret, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrWrongKind, kind)
	}
}

func (i *Issuer) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return i.RefreshTTL
	}
	return i.AccessTTL
}

// Issue signs a new token of the given kind with a fresh jti.
func (i *Issuer) Issue(kind Kind, sub Subject) (string, *Claims, error) {
	if sub.ID == "" {
		return "", nil, ErrMissingSubject
	}
	secret, err := i.secret(kind)
	if err != nil {
		return "", nil, err
	}
	if len(secret) == 0 {
		return "", nil, errors.New("empty signing secret")
	}

	now := i.now()
	claims := &Claims{
		Type:    kind,
		Role:    sub.Role,
		IsAdmin: sub.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        i.newID(),
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl(kind))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (i *Issuer) IssueAccess(sub Subject) (string, *Claims, error) {
	return i.Issue(KindAccess, sub)
}

func (i *Issuer) IssueRefresh(sub Subject) (string, *Claims, error) {
	return i.Issue(KindRefresh, sub)
}

// Parse checks signature, expiry and kind. It never consults the blacklist.
func (i *Issuer) Parse(tokenStr string, kind Kind) (*Claims, error) {
	secret, err := i.secret(kind)
	if err != nil {
		return nil, err
	}
	return claimsFromToken(tokenStr, secret, kind, jwt.WithTimeFunc(i.now))
}

func claimsFromToken(tokenStr string, secret []byte, kind Kind, opts ...jwt.ParserOption) (*Claims, error) {
	var claims Claims
	opts = append(opts, jwt.WithExpirationRequired())
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnexpectedSignMethod
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Type != kind {
		return nil, fmt.Errorf("%w: want %s, got %q", ErrWrongKind, kind, claims.Type)
	}
	if claims.ID == "" {
		return nil, ErrMissingID
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return &claims, nil
}
