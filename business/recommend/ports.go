package recommend

import (
	"context"
	"time"

	"bestinclick/domain"

	"github.com/google/uuid"
)

// BehaviorQuery is the read side of the behavior log used by the generators.
type BehaviorQuery interface {
	HasUserBehavior(ctx context.Context, userID uint) (bool, error)
	FindUserEventsSince(ctx context.Context, userID uint, since time.Time, types ...string) ([]domain.BehaviorEvent, error)
	FindSessionEventsSince(ctx context.Context, sessionKey string, since time.Time) ([]domain.BehaviorEvent, error)
	CountProductEventsByUsers(ctx context.Context, userIDs []uint, since time.Time, types ...string) (map[uint64]int, error)
}

type SimilarityQuery interface {
	TopSimilarUsers(ctx context.Context, userID uint, minScore float64, limit int) ([]domain.UserSimilarity, error)
}

// Catalog is the read-only product store.
type Catalog interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, bool, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	FindCandidates(ctx context.Context, filter domain.ProductFilter) ([]domain.ScoredProduct, error)
}

// Cache stores ranked lists per scope ("user:<id>" or "session:<key>").
// Implementations must treat a miss as (zero, false, nil).
type Cache interface {
	// Version is the current generation of scope. A list is written under the
	// version read before it was computed.
	Version(ctx context.Context, scope string) (int64, error)
	Get(ctx context.Context, scope string, version int64, variant string) (domain.CachedRecommendations, bool, error)
	Set(ctx context.Context, scope string, version int64, variant string, v domain.CachedRecommendations, ttl time.Duration) error
}

// SessionRecorder persists what was shown so feedback can be attributed later.
type SessionRecorder interface {
	StartSession(ctx context.Context, in domain.SessionInput) (uuid.UUID, error)
}
