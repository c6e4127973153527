package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bestinclick/domain"

	"github.com/google/uuid"
)

type fakeRepo struct {
	sessions map[uuid.UUID]domain.RecommendationSession
	results  []domain.RecommendationResult
	fail     bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: map[uuid.UUID]domain.RecommendationSession{}}
}

func (f *fakeRepo) CreateSession(_ context.Context, s *domain.RecommendationSession, results []domain.RecommendationResult) error {
	if f.fail {
		return errors.New("insert failed")
	}
	f.sessions[s.ID] = *s
	for _, r := range results {
		r.ID = uint64(len(f.results) + 1)
		f.results = append(f.results, r)
	}
	return nil
}

func (f *fakeRepo) FindSession(_ context.Context, id uuid.UUID) (domain.RecommendationSession, bool, error) {
	s, ok := f.sessions[id]
	return s, ok, nil
}

func (f *fakeRepo) FindResult(_ context.Context, sessionID uuid.UUID, productID uint64) (domain.RecommendationResult, bool, error) {
	for _, r := range f.results {
		if r.SessionID == sessionID && r.ProductID == productID {
			return r, true, nil
		}
	}
	return domain.RecommendationResult{}, false, nil
}

func (f *fakeRepo) FindResults(_ context.Context, sessionID uuid.UUID) ([]domain.RecommendationResult, error) {
	var out []domain.RecommendationResult
	for _, r := range f.results {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateResult(_ context.Context, r *domain.RecommendationResult) error {
	for i := range f.results {
		if f.results[i].ID == r.ID {
			f.results[i] = *r
			return nil
		}
	}
	return errors.New("missing row")
}

var fixedNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTracker() (*TrackingService, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewTrackingService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func startSession(t *testing.T, svc *TrackingService) uuid.UUID {
	t.Helper()
	id, err := svc.StartSession(context.Background(), domain.SessionInput{
		RecommendationType: domain.RecTypePersonalized,
		FallbackTier:       domain.TierPersonalized,
		Items: []domain.Recommendation{
			{ProductID: 10, Score: 0.9, Algorithm: domain.AlgorithmCollaborative},
			{ProductID: 11, Score: 0.7, Algorithm: domain.AlgorithmTrending},
			{ProductID: 12, Score: 0.5, Algorithm: domain.AlgorithmPopularity},
			{ProductID: 13, Score: 0.5, Algorithm: domain.AlgorithmPopularity},
		},
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return id
}

func TestStartSessionPositionsAreOneBased(t *testing.T) {
	svc, repo := newTracker()
	id := startSession(t, svc)

	if id == uuid.Nil {
		t.Fatal("expected a session id")
	}
	if repo.sessions[id].RecommendationType != domain.RecTypePersonalized {
		t.Errorf("session = %+v", repo.sessions[id])
	}
	for i, r := range repo.results {
		if r.Position != i+1 || r.SessionID != id {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
}

func TestStartSessionPropagatesStoreError(t *testing.T) {
	svc, repo := newTracker()
	repo.fail = true

	if _, err := svc.StartSession(context.Background(), domain.SessionInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrackFeedback(t *testing.T) {
	svc, repo := newTracker()
	id := startSession(t, svc)

	if err := svc.TrackFeedback(context.Background(), id, 11, domain.FeedbackClick); err != nil {
		t.Fatalf("TrackFeedback() error = %v", err)
	}
	if err := svc.TrackFeedback(context.Background(), id, 11, domain.FeedbackPurchase); err != nil {
		t.Fatalf("TrackFeedback() error = %v", err)
	}

	r, _, _ := repo.FindResult(context.Background(), id, 11)
	if !r.WasClicked || r.ClickedAt == nil || !r.ClickedAt.Equal(fixedNow) {
		t.Errorf("click not recorded: %+v", r)
	}
	if !r.WasPurchased || r.PurchasedAt == nil {
		t.Errorf("purchase not recorded: %+v", r)
	}
	if r.WasAddedToCart {
		t.Error("unrelated flag set")
	}
}

func TestTrackFeedbackKeepsFirstTimestamp(t *testing.T) {
	svc, repo := newTracker()
	id := startSession(t, svc)

	_ = svc.TrackFeedback(context.Background(), id, 10, domain.FeedbackFavorite)
	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_ = svc.TrackFeedback(context.Background(), id, 10, domain.FeedbackFavorite)

	r, _, _ := repo.FindResult(context.Background(), id, 10)
	if !r.FavoritedAt.Equal(fixedNow) {
		t.Fatalf("favorited_at = %v, want first timestamp", r.FavoritedAt)
	}
}

func TestTrackFeedbackErrors(t *testing.T) {
	svc, _ := newTracker()
	id := startSession(t, svc)

	if err := svc.TrackFeedback(context.Background(), id, 10, "wink"); !domain.IsValidation(err) {
		t.Errorf("unknown action: got %v", err)
	}
	if err := svc.TrackFeedback(context.Background(), id, 999, domain.FeedbackClick); !domain.IsNotFound(err) {
		t.Errorf("unknown product: got %v", err)
	}
	if err := svc.TrackFeedback(context.Background(), uuid.New(), 10, domain.FeedbackClick); !domain.IsNotFound(err) {
		t.Errorf("unknown session: got %v", err)
	}
	if err := svc.TrackFeedback(context.Background(), uuid.Nil, 10, domain.FeedbackClick); !domain.IsValidation(err) {
		t.Errorf("nil session: got %v", err)
	}
}

func TestSessionPerformance(t *testing.T) {
	svc, _ := newTracker()
	id := startSession(t, svc)

	_ = svc.TrackFeedback(context.Background(), id, 10, domain.FeedbackClick)
	_ = svc.TrackFeedback(context.Background(), id, 11, domain.FeedbackClick)
	_ = svc.TrackFeedback(context.Background(), id, 11, domain.FeedbackCartAdd)
	_ = svc.TrackFeedback(context.Background(), id, 11, domain.FeedbackPurchase)
	_ = svc.TrackFeedback(context.Background(), id, 12, domain.FeedbackCompare)

	admin := domain.Viewer{UserID: 1, Admin: true}
	perf, err := svc.SessionPerformance(context.Background(), id, admin)
	if err != nil {
		t.Fatalf("SessionPerformance() error = %v", err)
	}

	if perf.Shown != 4 || perf.Clicks != 2 || perf.CartAdds != 1 || perf.Purchases != 1 || perf.Compares != 1 {
		t.Fatalf("perf = %+v", perf)
	}
	if perf.ClickRate != 0.5 || perf.PurchaseRate != 0.25 {
		t.Errorf("rates = %v / %v", perf.ClickRate, perf.PurchaseRate)
	}

	if _, err := svc.SessionPerformance(context.Background(), uuid.New(), admin); !domain.IsNotFound(err) {
		t.Errorf("unknown session: got %v", err)
	}
}

func TestSessionPerformanceOnlyForOwnerOrAdmin(t *testing.T) {
	svc, _ := newTracker()
	owner := uint(7)
	owned, err := svc.StartSession(context.Background(), domain.SessionInput{
		UserID:             &owner,
		RecommendationType: domain.RecTypePersonalized,
		FallbackTier:       domain.TierPersonalized,
		Items:              []domain.Recommendation{{ProductID: 10, Score: 0.9, Algorithm: domain.AlgorithmCollaborative}},
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	anonymous := startSession(t, svc)

	tests := []struct {
		name    string
		session uuid.UUID
		viewer  domain.Viewer
		allowed bool
	}{
		{"owner", owned, domain.Viewer{UserID: 7}, true},
		{"other user", owned, domain.Viewer{UserID: 8}, false},
		{"admin", owned, domain.Viewer{UserID: 1, Admin: true}, true},
		{"anonymous session for a user", anonymous, domain.Viewer{UserID: 7}, false},
		{"anonymous session for an admin", anonymous, domain.Viewer{UserID: 1, Admin: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SessionPerformance(context.Background(), tt.session, tt.viewer)
			if tt.allowed && err != nil {
				t.Fatalf("SessionPerformance() error = %v", err)
			}
			if !tt.allowed && !domain.IsNotFound(err) {
				t.Fatalf("SessionPerformance() error = %v, want not found", err)
			}
		})
	}
}
