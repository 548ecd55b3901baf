package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/pkg/tokens"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Gate        *middleware.TokenAuth
	// Ready reports whether the backing stores answer. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/registration", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout/access", d.AuthHandler.LogOut(tokens.KindAccess))
	e.POST("/logout/refresh", d.AuthHandler.LogOut(tokens.KindRefresh))
	e.POST("/token/refresh", d.AuthHandler.Refresh)

	e.GET("/secret", d.AuthHandler.Secret, d.Gate.RequireAccess)

	e.GET("/users", d.AuthHandler.ListUsers, d.Gate.RequireAccess, middleware.RequireAdmin)
	e.DELETE("/users", d.AuthHandler.DeleteUsers, d.Gate.RequireAccess, middleware.RequireAdmin)
}
