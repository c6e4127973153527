package tracking

import (
	"context"
	"fmt"
	"time"

	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// CreateSession stores the session and its result rows atomically.
	CreateSession(ctx context.Context, session *domain.RecommendationSession, results []domain.RecommendationResult) error
	FindSession(ctx context.Context, id uuid.UUID) (domain.RecommendationSession, bool, error)
	FindResult(ctx context.Context, sessionID uuid.UUID, productID uint64) (domain.RecommendationResult, bool, error)
	FindResults(ctx context.Context, sessionID uuid.UUID) ([]domain.RecommendationResult, error)
	UpdateResult(ctx context.Context, result *domain.RecommendationResult) error
}

type TrackingService struct {
	repo  SessionRepository
	now   func() time.Time
	newID func() uuid.UUID
}

func NewTrackingService(repo SessionRepository) *TrackingService {
	return &TrackingService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.New,
	}
}

// StartSession records a served list. Positions are 1-based in list order.
func (s *TrackingService) StartSession(ctx context.Context, in domain.SessionInput) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("context error: %w", err)
	}

	session := domain.RecommendationSession{
		ID:                 s.newID(),
		UserID:             in.UserID,
		SessionKey:         in.SessionKey,
		RecommendationType: in.RecommendationType,
		FallbackTier:       in.FallbackTier,
		CreatedAt:          s.now(),
	}

	results := make([]domain.RecommendationResult, 0, len(in.Items))
	for i, it := range in.Items {
		results = append(results, domain.RecommendationResult{
			SessionID:     session.ID,
			ProductID:     it.ProductID,
			Score:         it.Score,
			Position:      i + 1,
			AlgorithmUsed: it.Algorithm,
		})
	}

	if err := s.repo.CreateSession(ctx, &session, results); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create recommendation session: %w", err)
	}

	sessionsStarted.WithLabelValues(in.RecommendationType).Inc()

	return session.ID, nil
}

// TrackFeedback flags what the user did with one recommended product.
func (s *TrackingService) TrackFeedback(ctx context.Context, sessionID uuid.UUID, productID uint64, action string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if sessionID == uuid.Nil {
		return domain.NewValidationError("session_id", "is required")
	}
	if productID == 0 {
		return domain.NewValidationError("product_id", "is required")
	}
	if !IsAction(action) {
		return domain.NewValidationError("action", fmt.Sprintf("unknown feedback action %q", action))
	}

	result, found, err := s.repo.FindResult(ctx, sessionID, productID)
	if err != nil {
		return fmt.Errorf("failed to load recommendation result: %w", err)
	}
	if !found {
		return domain.NewNotFoundError("recommendation result", fmt.Sprintf("%s/%d", sessionID, productID))
	}

	if !ApplyFeedback(&result, action, s.now()) {
		return nil
	}

	if err := s.repo.UpdateResult(ctx, &result); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	feedbackTotal.WithLabelValues(action, result.AlgorithmUsed).Inc()
	logger.Debug("recommendation feedback recorded", "session_id", sessionID, "product_id", productID, "action", action)

	return nil
}

// SessionPerformance summarises the outcomes of a tracked session. A session the
// viewer may not read is reported as not found.
func (s *TrackingService) SessionPerformance(ctx context.Context, sessionID uuid.UUID, viewer domain.Viewer) (domain.SessionPerformance, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionPerformance{}, fmt.Errorf("context error: %w", err)
	}

	session, found, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		return domain.SessionPerformance{}, fmt.Errorf("failed to load recommendation session: %w", err)
	}
	if !found || !viewer.CanView(session) {
		return domain.SessionPerformance{}, domain.NewNotFoundError("recommendation session", sessionID)
	}

	results, err := s.repo.FindResults(ctx, sessionID)
	if err != nil {
		return domain.SessionPerformance{}, fmt.Errorf("failed to load recommendation results: %w", err)
	}

	return Summarize(sessionID, results), nil
}
