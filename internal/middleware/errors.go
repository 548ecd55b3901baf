package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/transport"
	"github.com/Skotchmaster/accounts/pkg/logging"
)

// InternalError logs err under a fresh error id. Only the id reaches the
// client.
func InternalError(c echo.Context, scope string, err error) error {
	errorID := uuid.NewString()
	logging.FromContext(c.Request().Context()).Error(scope+"_error",
		"status", http.StatusInternalServerError,
		"error_id", errorID,
		"error", err,
	)
	return echo.NewHTTPError(http.StatusInternalServerError, transport.ErrorResponse{
		Message: "internal error",
		ErrorID: errorID,
	}).SetInternal(err)
}
