package postgres

import (
	"context"
	"fmt"

	"bestinclick/business/recommend"
	"bestinclick/business/similarity"
	"bestinclick/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ similarity.SimilarityRepository = (*SimilarityRepository)(nil)
	_ recommend.SimilarityQuery       = (*SimilarityRepository)(nil)
)

type SimilarityRepository struct {
	DB *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) *SimilarityRepository {
	return &SimilarityRepository{DB: db}
}

const similarityInsertBatch = 200

// UpsertSimilarities overwrites the rows of the given pairs.
func (r *SimilarityRepository) UpsertSimilarities(ctx context.Context, rows []domain.UserSimilarity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(rows, similarityInsertBatch).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user similarities: %w", err)
	}

	return nil
}

// DeleteSimilarities removes the rows of the given pairs. Missing pairs are ignored.
func (r *SimilarityRepository) DeleteSimilarities(ctx context.Context, pairs []domain.UserPair) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(pairs) == 0 {
		return nil
	}

	keys := make([][]interface{}, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, []interface{}{p.User1ID, p.User2ID})
	}

	err := r.DB.WithContext(ctx).
		Where("(user1_id, user2_id) IN ?", keys).
		Delete(&domain.UserSimilarity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete user similarities: %w", err)
	}

	return nil
}

// TopSimilarUsers returns the pairs involving userID with score >= minScore, best first.
func (r *SimilarityRepository) TopSimilarUsers(ctx context.Context, userID uint, minScore float64, limit int) ([]domain.UserSimilarity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND similarity_score >= ?", userID, userID, minScore).
		Order("similarity_score DESC, user1_id, user2_id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []domain.UserSimilarity
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find similar users: %w", err)
	}

	return rows, nil
}
