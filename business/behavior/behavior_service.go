package behavior

import (
	"context"
	"fmt"

	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"gorm.io/datatypes"
)

// BehaviorRepository is the append-only behavior log.
type BehaviorRepository interface {
	Append(ctx context.Context, event *domain.BehaviorEvent) error
}

type ProductLookup interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, bool, error)
}

type ScoreRefresher interface {
	RefreshProduct(ctx context.Context, productID uint64) (domain.ProductScore, error)
}

// CacheInvalidator drops cached recommendation lists for a scope.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

type BehaviorInput struct {
	UserID          *uint
	SessionID       string
	ProductID       uint64
	BehaviorType    string
	DurationSeconds *int
	Rating          *int
	ReviewSentiment *float64
	SearchQuery     string
	Context         map[string]any
}

type BehaviorService struct {
	behaviors BehaviorRepository
	products  ProductLookup
	scores    ScoreRefresher
	cache     CacheInvalidator
}

// NewBehaviorService builds the ingest service. cache may be nil.
func NewBehaviorService(behaviors BehaviorRepository, products ProductLookup, scores ScoreRefresher, cache CacheInvalidator) *BehaviorService {
	return &BehaviorService{
		behaviors: behaviors,
		products:  products,
		scores:    scores,
		cache:     cache,
	}
}

// refreshOn lists the behaviors that recompute the product score inline.
var refreshOn = map[string]bool{
	domain.BehaviorPurchase: true,
	domain.BehaviorLike:     true,
	domain.BehaviorCartAdd:  true,
}

func (s *BehaviorService) RecordBehavior(ctx context.Context, in BehaviorInput) (domain.BehaviorEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.BehaviorEvent{}, fmt.Errorf("context error: %w", err)
	}

	if err := validate(in); err != nil {
		logger.Debug("rejected behavior event", "product_id", in.ProductID, "behavior_type", in.BehaviorType, "error", err)
		return domain.BehaviorEvent{}, err
	}

	product, found, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return domain.BehaviorEvent{}, fmt.Errorf("failed to load product: %w", err)
	}
	if !found || !product.IsActive {
		return domain.BehaviorEvent{}, domain.NewValidationError("product_id", "product does not exist or is inactive")
	}

	event := domain.BehaviorEvent{
		UserID:          in.UserID,
		SessionID:       in.SessionID,
		ProductID:       in.ProductID,
		BehaviorType:    in.BehaviorType,
		DurationSeconds: in.DurationSeconds,
		Rating:          in.Rating,
		ReviewSentiment: in.ReviewSentiment,
		SearchQuery:     in.SearchQuery,
	}
	if len(in.Context) > 0 {
		event.Context = datatypes.JSONMap(in.Context)
	}

	if err := s.behaviors.Append(ctx, &event); err != nil {
		logger.Error("failed to append behavior", "product_id", in.ProductID, "error", err)
		return domain.BehaviorEvent{}, fmt.Errorf("failed to record behavior: %w", err)
	}
	behaviorEventsTotal.WithLabelValues(event.BehaviorType).Inc()

	if refreshOn[event.BehaviorType] {
		if _, err := s.scores.RefreshProduct(ctx, event.ProductID); err != nil {
			logger.Warn("inline score refresh failed", "product_id", event.ProductID, "error", err)
		}
	}

	s.invalidate(ctx, event)

	return event, nil
}

func (s *BehaviorService) invalidate(ctx context.Context, event domain.BehaviorEvent) {
	if s.cache == nil {
		return
	}

	var scopes []string
	if event.UserID != nil {
		scopes = append(scopes, domain.CacheScope(event.UserID, ""))
	}
	if event.SessionID != "" {
		scopes = append(scopes, domain.CacheScope(nil, event.SessionID))
	}

	for _, scope := range scopes {
		if err := s.cache.Invalidate(ctx, scope); err != nil {
			logger.Debug("failed to invalidate recommendation cache", "scope", scope, "error", err)
		}
	}
}

func validate(in BehaviorInput) error {
	if in.ProductID == 0 {
		return domain.NewValidationError("product_id", "is required")
	}
	if !domain.IsBehaviorType(in.BehaviorType) {
		return domain.NewValidationError("behavior_type", fmt.Sprintf("unknown behavior type %q", in.BehaviorType))
	}
	if in.UserID == nil && in.SessionID == "" {
		return domain.NewValidationError("session_id", "is required for anonymous events")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return domain.NewValidationError("rating", "must be between 1 and 5")
	}
	if in.ReviewSentiment != nil && (*in.ReviewSentiment < -1 || *in.ReviewSentiment > 1) {
		return domain.NewValidationError("review_sentiment", "must be between -1 and 1")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return domain.NewValidationError("duration_seconds", "must not be negative")
	}
	return nil
}
