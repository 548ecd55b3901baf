package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/pkg/logging"
)

type options struct {
	quiet       map[string]struct{}
	contextKeys []string
}

type Option func(*options)

// WithQuietPaths logs successful requests on these routes at debug level.
// Failures are still logged normally.
func WithQuietPaths(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			o.quiet[p] = struct{}{}
		}
	}
}

// WithContextKeys copies echo context values set by later middleware
// (for example the authenticated account id) into the completion line.
func WithContextKeys(keys ...string) Option {
	return func(o *options) {
		o.contextKeys = append(o.contextKeys, keys...)
	}
}

func RequestLogger(base *slog.Logger, opts ...Option) echo.MiddlewareFunc {
	o := &options{quiet: map[string]struct{}{}}
	for _, opt := range opts {
		opt(o)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "path", c.Path())
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			status := c.Response().Status
			attrs := []any{
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			for _, k := range o.contextKeys {
				if v := c.Get(k); v != nil {
					attrs = append(attrs, k, v)
				}
			}

			switch _, quiet := o.quiet[c.Path()]; {
			case status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("request completed", attrs...)
			case status >= 400:
				l.Warn("request completed", attrs...)
			case quiet:
				l.Debug("request completed", attrs...)
			default:
				l.Info("request completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}
