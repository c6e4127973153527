package postgres

import (
	"context"
	"fmt"

	"bestinclick/business/scoring"
	"bestinclick/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ scoring.ScoreRepository = (*ScoreRepository)(nil)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// UpsertScore overwrites every column of the product's score row.
func (r *ScoreRepository) UpsertScore(ctx context.Context, score domain.ProductScore) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(&score).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product score: %w", err)
	}

	return nil
}
