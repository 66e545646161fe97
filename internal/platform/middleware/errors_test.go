package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/apperr"
)

func renderError(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/appointments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", apperr.Validation("date must be YYYY-MM-DD"), http.StatusBadRequest, "date must be YYYY-MM-DD"},
		{"not found", apperr.NotFound("appointment %s not found", "abc"), http.StatusNotFound, "appointment abc not found"},
		{"wrapped validation", fmt.Errorf("create: %w", apperr.Validation("duration must be positive")), http.StatusBadRequest, "duration must be positive"},
		{"store detail hidden", apperr.Store("insert appointment", errors.New("connection refused")), http.StatusInternalServerError, "store unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "rate limit exceeded"},
		{"echo error without message", &echo.HTTPError{Code: http.StatusMethodNotAllowed}, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)},
		{"echo error wrapping domain", echo.NewHTTPError(http.StatusInternalServerError).SetInternal(apperr.NotFound("patient not found")), http.StatusNotFound, "patient not found"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderError(t, http.MethodGet, tt.err)
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if got := decodeError(t, rec); got != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, got)
			}
		})
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := renderError(t, http.MethodHead, apperr.NotFound("missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}
