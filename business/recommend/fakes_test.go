package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bestinclick/domain"

	"github.com/google/uuid"
)

type fakeBehaviors struct {
	userEvents    map[uint][]domain.BehaviorEvent
	sessionEvents map[string][]domain.BehaviorEvent
	counts        map[uint64]int
	block         bool
}

func (f *fakeBehaviors) HasUserBehavior(_ context.Context, userID uint) (bool, error) {
	return len(f.userEvents[userID]) > 0, nil
}

func (f *fakeBehaviors) FindUserEventsSince(ctx context.Context, userID uint, since time.Time, types ...string) ([]domain.BehaviorEvent, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	var out []domain.BehaviorEvent
	for _, ev := range f.userEvents[userID] {
		if ev.CreatedAt.Before(since) || !matchesType(ev.BehaviorType, types) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeBehaviors) FindSessionEventsSince(_ context.Context, sessionKey string, since time.Time) ([]domain.BehaviorEvent, error) {
	var out []domain.BehaviorEvent
	for _, ev := range f.sessionEvents[sessionKey] {
		if !ev.CreatedAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeBehaviors) CountProductEventsByUsers(context.Context, []uint, time.Time, ...string) (map[uint64]int, error) {
	return f.counts, nil
}

func matchesType(t string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

type fakeSimilarities struct {
	rows []domain.UserSimilarity
	err  error
}

func (f *fakeSimilarities) TopSimilarUsers(context.Context, uint, float64, int) ([]domain.UserSimilarity, error) {
	return f.rows, f.err
}

// fakeCatalog applies ProductFilter in memory the way the postgres catalog does.
type fakeCatalog struct {
	products []domain.ScoredProduct
	err      error
}

func (f *fakeCatalog) FindByID(_ context.Context, id uint64) (domain.Product, bool, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p.Product, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (f *fakeCatalog) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	want := idSet(ids)
	var out []domain.Product
	for _, p := range f.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p.Product)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindCandidates(_ context.Context, filter domain.ProductFilter) ([]domain.ScoredProduct, error) {
	if f.err != nil {
		return nil, f.err
	}

	skip := idSet(filter.ExcludeIDs)
	cats, brands := idSet(filter.CategoryIDs), idSet(filter.BrandIDs)

	var out []domain.ScoredProduct
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if _, ok := skip[p.ID]; ok {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		_, inCat := cats[p.CategoryID]
		_, inBrand := brands[p.BrandID]
		switch {
		case filter.MatchAny && (len(cats) > 0 || len(brands) > 0):
			if !inCat && !inBrand {
				continue
			}
		case len(cats) > 0 && !inCat:
			continue
		case len(brands) > 0 && !inBrand:
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.OnlyScored && !p.HasScore {
			continue
		}
		if filter.OnlyTrending && p.TrendingScore <= 0 {
			continue
		}
		out = append(out, p)
	}

	key := func(p domain.ScoredProduct) float64 {
		switch filter.OrderBy {
		case domain.OrderByTrending:
			return p.TrendingScore
		case domain.OrderByOverall:
			return p.OverallScore
		case domain.OrderByRating:
			return p.AverageRating
		case domain.OrderByNewest:
			return float64(p.CreatedAt.Unix())
		default:
			return p.PopularityScore
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if key(out[i]) != key(out[j]) {
			return key(out[i]) > key(out[j])
		}
		return out[i].ID < out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]domain.CachedRecommendations
	versions map[string]int64
	err      error
	// simulates a behavior invalidating the scope while a list is computed
	invalidateOnMiss bool
}

func cacheKey(scope string, version int64, variant string) string {
	return fmt.Sprintf("%s|%d|%s", scope, version, variant)
}

func (f *fakeCache) Version(_ context.Context, scope string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.versions[scope], nil
}

func (f *fakeCache) Get(_ context.Context, scope string, version int64, variant string) (domain.CachedRecommendations, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.CachedRecommendations{}, false, f.err
	}
	v, ok := f.entries[cacheKey(scope, version, variant)]
	if !ok && f.invalidateOnMiss {
		f.invalidateOnMiss = false
		if f.versions == nil {
			f.versions = map[string]int64{}
		}
		f.versions[scope]++
	}
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, scope string, version int64, variant string, v domain.CachedRecommendations, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.entries == nil {
		f.entries = map[string]domain.CachedRecommendations{}
	}
	f.entries[cacheKey(scope, version, variant)] = v
	return nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	inputs []domain.SessionInput
	fail   bool
}

func (f *fakeRecorder) StartSession(_ context.Context, in domain.SessionInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return uuid.Nil, errors.New("insert failed")
	}
	f.inputs = append(f.inputs, in)
	return uuid.New(), nil
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id, category, brand uint64, price, popularity float64) domain.ScoredProduct {
	return domain.ScoredProduct{
		Product: domain.Product{
			ID:         id,
			Name:       "product",
			CategoryID: category,
			BrandID:    brand,
			Price:      price,
			IsActive:   true,
			CreatedAt:  testNow.Add(-time.Duration(id) * time.Hour),
		},
		HasScore:        popularity > 0,
		PopularityScore: popularity,
		OverallScore:    popularity,
	}
}

func event(userID uint, productID uint64, behavior string, age time.Duration) domain.BehaviorEvent {
	return domain.BehaviorEvent{
		UserID:       &userID,
		ProductID:    productID,
		BehaviorType: behavior,
		CreatedAt:    testNow.Add(-age),
	}
}
