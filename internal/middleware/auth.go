package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/domain"
	"github.com/Skotchmaster/accounts/pkg/logging"
	"github.com/Skotchmaster/accounts/pkg/tokens"
)

const (
	CtxClaims    = "claims"
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

const bearerPrefix = "bearer "

type Authorizer interface {
	Authorize(ctx context.Context, token string, kind tokens.Kind) (*tokens.Claims, error)
}

type TokenAuth struct {
	Svc Authorizer
}

func NewTokenAuth(svc Authorizer) *TokenAuth {
	return &TokenAuth{Svc: svc}
}

// BearerToken extracts the token from "Authorization: Bearer <jwt>".
func BearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(bearerPrefix):])
	return token, token != ""
}

// UnauthorizedMessage is the body text of every 401. Login failures share
// one message whether or not the username exists.
func UnauthorizedMessage(err error) string {
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		return "unauthorized"
	}
	switch ae.Kind {
	case domain.InvalidCredentials:
		return "invalid username or password"
	case domain.Revoked:
		return "token has been revoked"
	default:
		return "invalid or expired token"
	}
}

func (m *TokenAuth) Require(kind tokens.Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "token_auth")

			raw, ok := BearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims, err := m.Svc.Authorize(ctx, raw, kind)
			if err != nil {
				if errors.As(err, new(*domain.AuthError)) {
					l.Warn("unauthorized", "status", 401, "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, UnauthorizedMessage(err))
				}
				return InternalError(c, "token_auth", err)
			}

			c.Set(CtxClaims, claims)
			c.Set(CtxAccountID, claims.Subject)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}

func (m *TokenAuth) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Require(tokens.KindAccess)(next)
}

// RequireAdmin runs after RequireAccess.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(CtxClaims).(*tokens.Claims)
		if !ok || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
