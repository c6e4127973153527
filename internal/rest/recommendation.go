package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bestinclick/business/recommend"
	"bestinclick/domain"
	"bestinclick/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// SessionHeader carries the anonymous shopper session key.
const SessionHeader = "X-Session-ID"

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
	}

	RecommendationService interface {
		GetRecommendations(ctx context.Context, req recommend.Request) (recommend.Response, error)
		GetSimilarProducts(ctx context.Context, productID uint64, limit int) (recommend.Response, error)
		GetTrendingProducts(ctx context.Context, limit int) (recommend.Response, error)
	}

	RecommendationQuery struct {
		Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
		CategoryID uint64 `query:"category_id"`
		ExcludeIDs string `query:"exclude_ids"`
		SessionID  string `query:"session_id" validate:"omitempty,max=128"`
	}

	LimitQuery struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
	}
)

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
	}
}

// GET /api/v1/recommendations?limit=20&category_id=3&exclude_ids=1,2
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	excludes, err := parseIDList(q.ExcludeIDs)
	if err != nil {
		return writeError(c, err)
	}

	sessionKey := c.Request().Header.Get(SessionHeader)
	if sessionKey == "" {
		sessionKey = q.SessionID
	}

	resp, err := h.service.GetRecommendations(c.Request().Context(), recommend.Request{
		UserID:     currentUserID(c),
		SessionKey: sessionKey,
		Limit:      q.Limit,
		CategoryID: q.CategoryID,
		ExcludeIDs: excludes,
	})
	observe("recommendations", start, resp, err)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// GET /api/v1/products/:id/similar?limit=10
func (h *RecommendationHandler) Similar(c echo.Context) error {
	start := time.Now()

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var q LimitQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	resp, err := h.service.GetSimilarProducts(c.Request().Context(), productID, q.Limit)
	observe("similar", start, resp, err)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// GET /api/v1/products/trending?limit=10
func (h *RecommendationHandler) Trending(c echo.Context) error {
	start := time.Now()

	var q LimitQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	resp, err := h.service.GetTrendingProducts(c.Request().Context(), q.Limit)
	observe("trending", start, resp, err)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

func observe(endpoint string, start time.Time, resp recommend.Response, err error) {
	metrics.RecommendLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case domain.IsValidation(err):
		outcome = "invalid"
	case domain.IsNotFound(err):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.RecommendRequests.WithLabelValues(endpoint, outcome).Inc()

	if err == nil {
		metrics.RecommendTiers.WithLabelValues(endpoint, resp.FallbackTier, strconv.FormatBool(resp.Cached)).Inc()
	}
}
