package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit rejects request bodies larger than limit with 413. The limit is a
// human-readable size: "1M", "512K", "1G" or a bare byte count.
func BodyLimit(limit string) echo.MiddlewareFunc {
	max := parseLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			if req.ContentLength > max {
				return c.JSON(http.StatusRequestEntityTooLarge, ErrorBody{
					Error: fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", max),
				})
			}

			// Content-Length may be absent or wrong.
			req.Body = &limitedReadCloser{ReadCloser: req.Body, remaining: max}
			return next(c)
		}
	}
}

type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	toRead := int64(len(p))
	if toRead > r.remaining+1 {
		toRead = r.remaining + 1
	}

	n, err := r.ReadCloser.Read(p[:toRead])
	r.remaining -= int64(n)
	if r.remaining < 0 {
		r.exceeded = true
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return n, err
}

// parseLimit parses "1M", "512K", "10G" (optionally with a B suffix) into bytes.
// Unparseable input yields 1 MB.
func parseLimit(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "B")
	if s == "" {
		return 1 << 20
	}

	var multiplier int64 = 1
	switch s[len(s)-1] {
	case 'G':
		multiplier = 1 << 30
		s = s[:len(s)-1]
	case 'M':
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case 'K':
		multiplier = 1 << 10
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n * multiplier
}
