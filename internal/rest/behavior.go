package rest

import (
	"context"
	"net/http"

	"bestinclick/business/behavior"
	"bestinclick/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	BehaviorHandler struct {
		validate *validator.Validate
		service  BehaviorService
	}

	BehaviorService interface {
		RecordBehavior(ctx context.Context, in behavior.BehaviorInput) (domain.BehaviorEvent, error)
	}

	RecordBehaviorRequest struct {
		ProductID       uint64         `json:"product_id" validate:"required"`
		BehaviorType    string         `json:"behavior_type" validate:"required"`
		SessionID       string         `json:"session_id" validate:"omitempty,max=128"`
		DurationSeconds *int           `json:"duration_seconds" validate:"omitempty,min=0"`
		Rating          *int           `json:"rating" validate:"omitempty,min=1,max=5"`
		ReviewSentiment *float64       `json:"review_sentiment" validate:"omitempty,min=-1,max=1"`
		SearchQuery     string         `json:"search_query" validate:"omitempty,max=500"`
		Context         map[string]any `json:"context"`
	}
)

func NewBehaviorHandler(svc BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// POST /api/v1/behaviors
func (h *BehaviorHandler) Record(c echo.Context) error {
	var req RecordBehaviorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sessionID := c.Request().Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = req.SessionID
	}

	ctxData := req.Context
	if ctxData == nil {
		ctxData = map[string]any{}
	}
	if _, ok := ctxData["user_agent"]; !ok && c.Request().UserAgent() != "" {
		ctxData["user_agent"] = c.Request().UserAgent()
	}
	if _, ok := ctxData["referrer"]; !ok && c.Request().Referer() != "" {
		ctxData["referrer"] = c.Request().Referer()
	}

	event, err := h.service.RecordBehavior(c.Request().Context(), behavior.BehaviorInput{
		UserID:          currentUserID(c),
		SessionID:       sessionID,
		ProductID:       req.ProductID,
		BehaviorType:    req.BehaviorType,
		DurationSeconds: req.DurationSeconds,
		Rating:          req.Rating,
		ReviewSentiment: req.ReviewSentiment,
		SearchQuery:     req.SearchQuery,
		Context:         ctxData,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}
