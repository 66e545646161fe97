package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers suited to a JSON API consumed by a
// browser front end. Responses carry patient names, so shared caches must not
// store them; browsers may keep a private copy but have to revalidate it (see ETag).
// hsts adds Strict-Transport-Security and belongs only behind TLS.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	static := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "0",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "private, no-cache",
	}
	if hsts {
		static["Strict-Transport-Security"] = "max-age=31536000"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for k, v := range static {
				h.Set(k, v)
			}
			return next(c)
		}
	}
}
