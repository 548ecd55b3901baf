package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/domain"
	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/transport"
	"github.com/Skotchmaster/accounts/pkg/logging"
	"github.com/Skotchmaster/accounts/pkg/tokens"
)

type AuthService interface {
	Register(ctx context.Context, req transport.RegisterRequest) (*transport.RegisterResponse, error)
	Login(ctx context.Context, username, password string) (*transport.TokenPair, error)
	Logout(ctx context.Context, token string, kind tokens.Kind) error
	RefreshAccess(ctx context.Context, refreshToken string) (*transport.AccessToken, error)
	ListAccounts(ctx context.Context) ([]transport.AccountView, error)
	DeleteAllAccounts(ctx context.Context) (int64, error)
}

type AuthHTTP struct {
	Svc AuthService
}

// httpError maps service errors to responses.
func httpError(c echo.Context, handler string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	var ae *domain.AuthError
	switch {
	case errors.Is(err, domain.ErrValidation):
		l.Warn(handler+"_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		l.Warn(handler+"_failed", "status", 409, "reason", "conflict")
		return echo.NewHTTPError(http.StatusConflict, "account already exists")
	case errors.As(err, &ae):
		l.Warn(handler+"_failed", "status", 401, "reason", ae.Kind.String())
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.UnauthorizedMessage(err))
	}

	return middleware.InternalError(c, handler, err)
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(c, "register", err)
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(c, "login", err)
	}

	return c.JSON(http.StatusOK, res)
}

// LogOut revokes the bearer token of the given kind.
func (h *AuthHTTP) LogOut(kind tokens.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		raw, ok := middleware.BearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		if err := h.Svc.Logout(ctx, raw, kind); err != nil {
			return httpError(c, "logout", err)
		}

		return c.JSON(http.StatusOK, transport.Message{
			Message: fmt.Sprintf("%s token has been revoked", kind),
		})
	}
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	raw, ok := middleware.BearerToken(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	res, err := h.Svc.RefreshAccess(ctx, raw)
	if err != nil {
		return httpError(c, "refresh", err)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Secret(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"answer":     42,
		"account_id": c.Get(middleware.CtxAccountID),
	})
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListAccounts(c.Request().Context())
	if err != nil {
		return httpError(c, "list_users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *AuthHTTP) DeleteUsers(c echo.Context) error {
	n, err := h.Svc.DeleteAllAccounts(c.Request().Context())
	if err != nil {
		return httpError(c, "delete_users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"deleted": n,
		"message": fmt.Sprintf("%d row(s) deleted", n),
	})
}
