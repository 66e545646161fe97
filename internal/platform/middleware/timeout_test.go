package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	}

	err := RequestTimeout(5 * time.Second)(handler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequestTimeout_ReturnsTimeoutOnExpiry(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/weekly", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	release := make(chan struct{})
	defer close(release)
	handler := func(c echo.Context) error {
		select {
		case <-release:
		case <-c.Request().Context().Done():
		}
		return nil
	}

	err := RequestTimeout(50 * time.Millisecond)(handler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", rec.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Error != "request timed out" {
		t.Errorf("unexpected error body %q", body.Error)
	}
}

func TestRequestTimeout_SkipsPrefixes(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline for skipped path")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestTimeout(50*time.Millisecond, "/health")(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_ContextHasDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected context to have a deadline")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestTimeout(30 * time.Second)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
