package rest

import (
	"context"
	"net/http"

	"bestinclick/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type (
	TrackingHandler struct {
		validate *validator.Validate
		service  TrackingService
	}

	TrackingService interface {
		TrackFeedback(ctx context.Context, sessionID uuid.UUID, productID uint64, action string) error
		SessionPerformance(ctx context.Context, sessionID uuid.UUID, viewer domain.Viewer) (domain.SessionPerformance, error)
	}

	TrackFeedbackRequest struct {
		SessionID string `json:"session_id" validate:"required,uuid"`
		ProductID uint64 `json:"product_id" validate:"required"`
		Action    string `json:"action" validate:"required,oneof=click cart_add purchase favorite compare"`
	}
)

func NewTrackingHandler(svc TrackingService) *TrackingHandler {
	return &TrackingHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// POST /api/v1/recommendations/feedback
func (h *TrackingHandler) Feedback(c echo.Context) error {
	var req TrackFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid session id"})
	}

	if err := h.service.TrackFeedback(c.Request().Context(), sessionID, req.ProductID, req.Action); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/sessions/:id/performance
func (h *TrackingHandler) Performance(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid session id"})
	}

	perf, err := h.service.SessionPerformance(c.Request().Context(), sessionID, currentViewer(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(perf))
}
