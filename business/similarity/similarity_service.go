package similarity

import (
	"context"
	"fmt"
	"time"

	"bestinclick/domain"
	"bestinclick/pkg/logger"
)

type BehaviorQuery interface {
	RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]uint, error)
	FindUserEventsSince(ctx context.Context, userID uint, since time.Time, types ...string) ([]domain.BehaviorEvent, error)
}

type SimilarityRepository interface {
	UpsertSimilarities(ctx context.Context, rows []domain.UserSimilarity) error
	// DeleteSimilarities removes the stored rows of the given pairs, if any.
	DeleteSimilarities(ctx context.Context, pairs []domain.UserPair) error
}

type SimilarityService struct {
	behaviors BehaviorQuery
	repo      SimilarityRepository
	cfg       Config
	now       func() time.Time
}

func NewSimilarityService(behaviors BehaviorQuery, repo SimilarityRepository, cfg Config) *SimilarityService {
	return &SimilarityService{
		behaviors: behaviors,
		repo:      repo,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ComputePair returns the similarity of two users over their trailing-window behavior.
func (s *SimilarityService) ComputePair(ctx context.Context, a, b uint) (domain.UserSimilarity, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserSimilarity{}, fmt.Errorf("context error: %w", err)
	}

	now := s.now()
	since := now.Add(-s.cfg.Window)

	va, err := s.userVector(ctx, a, since)
	if err != nil {
		return domain.UserSimilarity{}, err
	}
	vb, err := s.userVector(ctx, b, since)
	if err != nil {
		return domain.UserSimilarity{}, err
	}

	score, common := Cosine(va, vb, s.cfg.MinCommonProducts)

	return domain.NewUserSimilarity(a, b, score, common, now), nil
}

// RefreshSimilarities recomputes all pairs among the most recently active users
// and stores the pairs above the threshold. Pairs that fell to or below the
// threshold are deleted so an old high score does not outlive the refresh.
// maxUsers <= 0 uses the configured cap.
func (s *SimilarityService) RefreshSimilarities(ctx context.Context, maxUsers int) (domain.BatchReport, error) {
	var report domain.BatchReport

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("context error: %w", err)
	}
	if maxUsers <= 0 {
		maxUsers = s.cfg.MaxUsers
	}

	now := s.now()
	since := now.Add(-s.cfg.Window)

	users, err := s.behaviors.RecentlyActiveUsers(ctx, since, maxUsers)
	if err != nil {
		return report, fmt.Errorf("failed to load active users: %w", err)
	}

	vectors := make(map[uint]Vector, len(users))
	ordered := make([]uint, 0, len(users))
	for _, uid := range users {
		v, err := s.userVector(ctx, uid, since)
		if err != nil {
			report.Failed++
			logger.Error("failed to build user vector", "user_id", uid, "error", err)
			continue
		}
		if len(v) < s.cfg.MinCommonProducts {
			report.Skipped++
			continue
		}
		vectors[uid] = v
		ordered = append(ordered, uid)
	}

	var (
		pending []domain.UserSimilarity
		stale   []domain.UserPair
	)
	for i := 0; i < len(ordered); i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("similarity refresh interrupted",
				"users_done", i,
				"users_total", len(ordered),
				"error", err,
			)
			return report, fmt.Errorf("context error: %w", err)
		}

		for j := i + 1; j < len(ordered); j++ {
			score, common := Cosine(vectors[ordered[i]], vectors[ordered[j]], s.cfg.MinCommonProducts)
			if score <= s.cfg.StoreThreshold {
				stale = append(stale, domain.NewUserPair(ordered[i], ordered[j]))
				if len(stale) >= s.cfg.UpsertBatchSize {
					if err := s.repo.DeleteSimilarities(ctx, stale); err != nil {
						return report, fmt.Errorf("failed to prune similarities: %w", err)
					}
					stale = nil
				}
				continue
			}
			pending = append(pending, domain.NewUserSimilarity(ordered[i], ordered[j], score, common, now))

			if len(pending) >= s.cfg.UpsertBatchSize {
				if err := s.repo.UpsertSimilarities(ctx, pending); err != nil {
					return report, fmt.Errorf("failed to store similarities: %w", err)
				}
				pending = nil
			}
		}
		report.Processed++
	}

	if len(pending) > 0 {
		if err := s.repo.UpsertSimilarities(ctx, pending); err != nil {
			return report, fmt.Errorf("failed to store similarities: %w", err)
		}
	}
	if len(stale) > 0 {
		if err := s.repo.DeleteSimilarities(ctx, stale); err != nil {
			return report, fmt.Errorf("failed to prune similarities: %w", err)
		}
	}

	similarityRefreshUsers.Add(float64(report.Processed))

	return report, nil
}

func (s *SimilarityService) userVector(ctx context.Context, userID uint, since time.Time) (Vector, error) {
	events, err := s.behaviors.FindUserEventsSince(ctx, userID, since)
	if err != nil {
		return nil, domain.NewComputationError("user_vector", userID, err)
	}
	return BuildVector(events, s.cfg.Weights), nil
}
