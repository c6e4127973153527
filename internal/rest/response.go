package rest

import (
	"net/http"
	"strconv"
	"strings"

	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// writeError maps the domain error taxonomy onto HTTP status codes. Internal
// failures are logged and reported without their cause.
func writeError(c echo.Context, err error) error {
	switch {
	case domain.IsValidation(err):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case domain.IsNotFound(err):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		logger.Error("Request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal server error"})
	}
}

func currentUserID(c echo.Context) *uint {
	id, ok := c.Get("user_id").(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

// currentViewer describes the authenticated caller for ownership checks.
func currentViewer(c echo.Context) domain.Viewer {
	var v domain.Viewer
	if id := currentUserID(c); id != nil {
		v.UserID = *id
	}
	role, _ := c.Get("role").(string)
	v.Admin = strings.EqualFold(role, "admin")
	return v
}

// parseIDList reads a comma separated list of product ids such as "1,2,3".
func parseIDList(raw string) ([]uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, domain.NewValidationError("exclude_ids", "must be a comma separated list of product ids")
		}
		ids = append(ids, id)
	}

	return ids, nil
}
