package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/apperr"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders {"error": msg}.
// Domain errors are classified through apperr; echo.HTTPErrors keep their code.
// Server-side failures are logged with the cause, which is never sent to the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := classify(err)
		if code >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("request_id", requestID(c)).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, ErrorBody{Error: msg})
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if code, msg := classify(he.Internal); code != http.StatusInternalServerError {
				return code, msg
			}
		}
		switch m := he.Message.(type) {
		case string:
			return he.Code, m
		case error:
			return he.Code, m.Error()
		default:
			return he.Code, http.StatusText(he.Code)
		}
	}
	return apperr.HTTPStatus(err), apperr.Message(err)
}

func requestID(c echo.Context) string {
	rid, _ := c.Get(RequestIDKey).(string)
	return rid
}
