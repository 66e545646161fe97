package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout sets a context deadline on each incoming request. If the
// deadline passes before the handler returns, the client receives 504 with a
// JSON error body. Store calls observe the same context, so a slow query is
// cancelled rather than left running. Paths with one of the skip prefixes are
// served without a deadline.
func RequestTimeout(timeout time.Duration, skipPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range skipPrefixes {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					if !c.Response().Committed {
						return c.JSON(http.StatusGatewayTimeout, ErrorBody{Error: "request timed out"})
					}
					return nil
				}
				// Client went away.
				return ctx.Err()
			}
		}
	}
}
