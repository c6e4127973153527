package scoring

import (
	"context"
	"fmt"
	"time"

	"bestinclick/domain"
	"bestinclick/pkg/logger"
)

// BehaviorQuery is the read side of the behavior log needed for aggregation.
type BehaviorQuery interface {
	ProductBehaviorStats(ctx context.Context, productID uint64) (domain.ProductBehaviorStats, error)
	FindProductEventsSince(ctx context.Context, productID uint64, since time.Time) ([]domain.BehaviorEvent, error)
}

type ScoreRepository interface {
	UpsertScore(ctx context.Context, score domain.ProductScore) error
}

type ScoringService struct {
	behaviors BehaviorQuery
	scores    ScoreRepository
	cfg       Config
	now       func() time.Time
}

func NewScoringService(behaviors BehaviorQuery, scores ScoreRepository, cfg Config) *ScoringService {
	return &ScoringService{
		behaviors: behaviors,
		scores:    scores,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RefreshProduct recomputes a product's scores from scratch and overwrites the stored row.
func (s *ScoringService) RefreshProduct(ctx context.Context, productID uint64) (domain.ProductScore, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductScore{}, fmt.Errorf("context error: %w", err)
	}

	now := s.now()

	stats, err := s.behaviors.ProductBehaviorStats(ctx, productID)
	if err != nil {
		return domain.ProductScore{}, domain.NewComputationError("product_score", productID, err)
	}
	stats.ProductID = productID

	recent, err := s.behaviors.FindProductEventsSince(ctx, productID, now.Add(-s.cfg.TrendingWindow))
	if err != nil {
		return domain.ProductScore{}, domain.NewComputationError("product_score", productID, err)
	}

	score := ComputeProductScore(stats, recent, now, s.cfg)

	if err := s.scores.UpsertScore(ctx, score); err != nil {
		return domain.ProductScore{}, domain.NewComputationError("product_score", productID, err)
	}

	scoreRefreshTotal.WithLabelValues("ok").Inc()

	return score, nil
}

// RefreshProducts refreshes every id in order. A failing product is logged and
// counted; the pass only stops early when ctx is done.
func (s *ScoringService) RefreshProducts(ctx context.Context, productIDs []uint64) (domain.BatchReport, error) {
	var report domain.BatchReport

	for i, id := range productIDs {
		if err := ctx.Err(); err != nil {
			report.Skipped = len(productIDs) - i
			logger.Warn("score refresh interrupted",
				"processed", report.Processed,
				"failed", report.Failed,
				"skipped", report.Skipped,
				"error", err,
			)
			return report, fmt.Errorf("context error: %w", err)
		}

		if _, err := s.RefreshProduct(ctx, id); err != nil {
			report.Failed++
			scoreRefreshTotal.WithLabelValues("failed").Inc()
			logger.Error("failed to refresh product score", "product_id", id, "error", err)
			continue
		}
		report.Processed++
	}

	return report, nil
}
