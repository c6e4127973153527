package postgres

import (
	"context"
	"fmt"
	"time"

	"bestinclick/business/behavior"
	"bestinclick/business/recommend"
	"bestinclick/business/scoring"
	"bestinclick/business/similarity"
	"bestinclick/domain"

	"gorm.io/gorm"
)

var (
	_ behavior.BehaviorRepository = (*BehaviorRepository)(nil)
	_ scoring.BehaviorQuery       = (*BehaviorRepository)(nil)
	_ similarity.BehaviorQuery    = (*BehaviorRepository)(nil)
	_ recommend.BehaviorQuery     = (*BehaviorRepository)(nil)
)

// BehaviorRepository is the append-only behavior log.
type BehaviorRepository struct {
	DB *gorm.DB
}

func NewBehaviorRepository(db *gorm.DB) *BehaviorRepository {
	return &BehaviorRepository{DB: db}
}

func (r *BehaviorRepository) Append(ctx context.Context, event *domain.BehaviorEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append behavior: %w", err)
	}

	return nil
}

const productStatsQuery = `
SELECT
	COUNT(*) FILTER (WHERE behavior_type = 'view') AS total_views,
	COUNT(DISTINCT user_id) FILTER (WHERE behavior_type = 'view' AND user_id IS NOT NULL) AS unique_views,
	COALESCE(AVG(duration_seconds) FILTER (WHERE behavior_type = 'view' AND duration_seconds IS NOT NULL), 0) AS avg_view_duration,
	COUNT(*) FILTER (WHERE behavior_type = 'like') AS total_likes,
	COUNT(*) FILTER (WHERE behavior_type = 'unlike') AS total_unlikes,
	COUNT(*) FILTER (WHERE behavior_type = 'cart_add') AS total_cart_adds,
	COUNT(*) FILTER (WHERE behavior_type = 'purchase') AS total_purchases,
	COUNT(*) FILTER (WHERE behavior_type IN ('review_positive', 'review_negative') AND rating IS NOT NULL) AS total_reviews,
	AVG(rating) FILTER (WHERE behavior_type IN ('review_positive', 'review_negative') AND rating IS NOT NULL) AS avg_rating,
	AVG(review_sentiment) FILTER (WHERE behavior_type IN ('review_positive', 'review_negative') AND rating IS NOT NULL AND review_sentiment IS NOT NULL) AS avg_sentiment
FROM user_behaviors
WHERE product_id = ?`

func (r *BehaviorRepository) ProductBehaviorStats(ctx context.Context, productID uint64) (domain.ProductBehaviorStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductBehaviorStats{}, fmt.Errorf("context error: %w", err)
	}

	var stats domain.ProductBehaviorStats
	if err := r.DB.WithContext(ctx).Raw(productStatsQuery, productID).Scan(&stats).Error; err != nil {
		return domain.ProductBehaviorStats{}, fmt.Errorf("failed to aggregate product behaviors: %w", err)
	}
	stats.ProductID = productID

	return stats, nil
}

func (r *BehaviorRepository) FindProductEventsSince(ctx context.Context, productID uint64, since time.Time) ([]domain.BehaviorEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.BehaviorEvent
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND created_at >= ?", productID, since).
		Order("created_at").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find product behaviors: %w", err)
	}

	return events, nil
}

func (r *BehaviorRepository) FindUserEventsSince(ctx context.Context, userID uint, since time.Time, types ...string) ([]domain.BehaviorEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Where("user_id = ? AND created_at >= ?", userID, since)
	if len(types) > 0 {
		q = q.Where("behavior_type IN ?", types)
	}

	var events []domain.BehaviorEvent
	if err := q.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find user behaviors: %w", err)
	}

	return events, nil
}

func (r *BehaviorRepository) FindSessionEventsSince(ctx context.Context, sessionKey string, since time.Time) ([]domain.BehaviorEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.BehaviorEvent
	err := r.DB.WithContext(ctx).
		Where("session_id = ? AND created_at >= ?", sessionKey, since).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find session behaviors: %w", err)
	}

	return events, nil
}

func (r *BehaviorRepository) HasUserBehavior(ctx context.Context, userID uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var found int
	err := r.DB.WithContext(ctx).
		Model(&domain.BehaviorEvent{}).
		Select("1").
		Where("user_id = ?", userID).
		Limit(1).
		Scan(&found).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user behaviors: %w", err)
	}

	return found == 1, nil
}

// RecentlyActiveUsers returns authenticated users ordered by their latest event.
func (r *BehaviorRepository) RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.BehaviorEvent{}).
		Select("user_id").
		Where("user_id IS NOT NULL AND created_at >= ?", since).
		Group("user_id").
		Order("MAX(created_at) DESC, user_id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var users []uint
	if err := q.Pluck("user_id", &users).Error; err != nil {
		return nil, fmt.Errorf("failed to find active users: %w", err)
	}

	return users, nil
}

type productCount struct {
	ProductID uint64
	Total     int
}

func (r *BehaviorRepository) CountProductEventsByUsers(ctx context.Context, userIDs []uint, since time.Time, types ...string) (map[uint64]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(userIDs) == 0 {
		return map[uint64]int{}, nil
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.BehaviorEvent{}).
		Select("product_id, COUNT(*) AS total").
		Where("user_id IN ? AND created_at >= ?", userIDs, since)
	if len(types) > 0 {
		q = q.Where("behavior_type IN ?", types)
	}

	var rows []productCount
	if err := q.Group("product_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count product behaviors: %w", err)
	}

	counts := make(map[uint64]int, len(rows))
	for _, row := range rows {
		counts[row.ProductID] = row.Total
	}

	return counts, nil
}
