package middleware

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bufferedResponseWriter holds the status and body until the ETag is known.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{writer: w, statusCode: http.StatusOK}
}

func (w *bufferedResponseWriter) Header() http.Header { return w.writer.Header() }

func (w *bufferedResponseWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *bufferedResponseWriter) WriteHeader(code int) { w.statusCode = code }

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.writer.Write(w.buf.Bytes())
	return err
}

// ETag tags successful GET responses with a weak validator over the body and
// answers a matching If-None-Match with 304. Polling dashboards re-request the
// same lists every few seconds; unchanged data then costs no body transfer.
func ETag(skipPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			for _, p := range skipPrefixes {
				if strings.HasPrefix(req.URL.Path, p) {
					return next(c)
				}
			}

			res := c.Response()
			orig := res.Writer
			buf := newBufferedResponseWriter(orig)
			res.Writer = buf
			err := next(c)
			res.Writer = orig
			if err != nil {
				if res.Committed {
					// Handler wrote a response and then failed; deliver what it wrote.
					_ = buf.flushTo()
				}
				return err
			}

			if buf.statusCode != http.StatusOK {
				return buf.flushTo()
			}

			etag := computeETag(buf.buf.Bytes())
			res.Header().Set("ETag", etag)
			if inm := req.Header.Get("If-None-Match"); inm != "" && etagMatch(inm, etag) {
				res.Header().Del(echo.HeaderContentType)
				res.Header().Del(echo.HeaderContentLength)
				res.Status = http.StatusNotModified
				orig.WriteHeader(http.StatusNotModified)
				return nil
			}
			return buf.flushTo()
		}
	}
}

func computeETag(body []byte) string {
	return fmt.Sprintf(`W/"%x"`, md5.Sum(body))
}

// etagMatch implements the weak comparison used by If-None-Match.
func etagMatch(header, etag string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
