package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"bestinclick/pkg/logger"

	jsonres "bestinclick/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escaped a handler in the shared error envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		logger.Error("Unhandled request error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, jsonres.Error(codeFor(status), message, nil))
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", "error", writeErr)
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}
