package postgres

import (
	"context"
	"errors"
	"fmt"

	"bestinclick/business/tracking"
	"bestinclick/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ tracking.SessionRepository = (*RecommendationSessionRepository)(nil)

type RecommendationSessionRepository struct {
	DB *gorm.DB
}

func NewRecommendationSessionRepository(db *gorm.DB) *RecommendationSessionRepository {
	return &RecommendationSessionRepository{DB: db}
}

func (r *RecommendationSessionRepository) CreateSession(ctx context.Context, session *domain.RecommendationSession, results []domain.RecommendationResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create recommendation session: %w", err)
		}
		if len(results) == 0 {
			return nil
		}
		if err := tx.Create(&results).Error; err != nil {
			return fmt.Errorf("failed to create recommendation results: %w", err)
		}
		return nil
	})
}

func (r *RecommendationSessionRepository) FindSession(ctx context.Context, id uuid.UUID) (domain.RecommendationSession, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationSession{}, false, fmt.Errorf("context error: %w", err)
	}

	var session domain.RecommendationSession
	err := r.DB.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecommendationSession{}, false, nil
		}
		return domain.RecommendationSession{}, false, fmt.Errorf("failed to find recommendation session: %w", err)
	}

	return session, true, nil
}

func (r *RecommendationSessionRepository) FindResult(ctx context.Context, sessionID uuid.UUID, productID uint64) (domain.RecommendationResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, false, fmt.Errorf("context error: %w", err)
	}

	var result domain.RecommendationResult
	err := r.DB.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecommendationResult{}, false, nil
		}
		return domain.RecommendationResult{}, false, fmt.Errorf("failed to find recommendation result: %w", err)
	}

	return result, true, nil
}

func (r *RecommendationSessionRepository) FindResults(ctx context.Context, sessionID uuid.UUID) ([]domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var results []domain.RecommendationResult
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recommendation results: %w", err)
	}

	return results, nil
}

var outcomeColumns = []string{
	"was_clicked", "clicked_at",
	"was_added_to_cart", "cart_added_at",
	"was_purchased", "purchased_at",
	"was_favorited", "favorited_at",
	"was_compared", "compared_at",
}

// UpdateResult writes the outcome flags of an existing result row.
func (r *RecommendationSessionRepository) UpdateResult(ctx context.Context, result *domain.RecommendationResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	res := r.DB.WithContext(ctx).
		Model(result).
		Select(outcomeColumns).
		Updates(result)
	if res.Error != nil {
		return fmt.Errorf("failed to update recommendation result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("recommendation result", result.ID)
	}

	return nil
}
