package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"bestinclick/domain"
)

// Query is the input shared by all candidate generators.
type Query struct {
	UserID     uint
	SessionKey string
	Limit      int
	CategoryID uint64
	ExcludeIDs []uint64
}

// Generator produces scored candidates for one strategy. Missing data yields an
// empty slice; an error means the strategy could not run at all.
type Generator interface {
	Name() string
	Generate(ctx context.Context, q Query) ([]domain.Recommendation, error)
}

type clock func() time.Time

// ---- collaborative ----

type collaborativeGenerator struct {
	behaviors    BehaviorQuery
	similarities SimilarityQuery
	catalog      Catalog
	cfg          Config
	now          clock
}

func (g *collaborativeGenerator) Name() string { return SourceCollaborative }

func (g *collaborativeGenerator) Generate(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	if q.UserID == 0 {
		return nil, nil
	}

	similar, err := g.similarities.TopSimilarUsers(ctx, q.UserID, g.cfg.CollaborativeMinSimilarity, g.cfg.CollaborativeTopUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to load similar users: %w", err)
	}
	if len(similar) == 0 {
		return nil, nil
	}

	neighbours := make([]uint, 0, len(similar))
	for _, s := range similar {
		neighbours = append(neighbours, s.Other(q.UserID))
	}

	owned, err := g.behaviors.FindUserEventsSince(ctx, q.UserID, time.Time{},
		domain.BehaviorLike, domain.BehaviorPurchase, domain.BehaviorCartAdd)
	if err != nil {
		return nil, fmt.Errorf("failed to load user interactions: %w", err)
	}
	skip := idSet(q.ExcludeIDs)
	for _, ev := range owned {
		skip[ev.ProductID] = struct{}{}
	}

	counts, err := g.behaviors.CountProductEventsByUsers(ctx, neighbours, g.now().Add(-g.cfg.CollaborativeWindow),
		domain.BehaviorLike, domain.BehaviorPurchase)
	if err != nil {
		return nil, fmt.Errorf("failed to count neighbour interactions: %w", err)
	}

	ids := make([]uint64, 0, len(counts))
	for pid := range counts {
		if _, ok := skip[pid]; !ok {
			ids = append(ids, pid)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := g.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate products: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(products))
	for _, p := range products {
		if !p.IsActive || (q.CategoryID != 0 && p.CategoryID != q.CategoryID) {
			continue
		}
		out = append(out, domain.Recommendation{
			ProductID: p.ID,
			Score:     math.Min(float64(counts[p.ID])/g.cfg.CollaborativeSaturation, 1),
			Algorithm: SourceCollaborative,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductID < out[j].ProductID
	})

	return truncate(out, q.Limit), nil
}

// ---- content based ----

type contentGenerator struct {
	behaviors BehaviorQuery
	catalog   Catalog
	cfg       Config
	now       clock
}

func (g *contentGenerator) Name() string { return SourceContentBased }

func (g *contentGenerator) Generate(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	if q.UserID == 0 {
		return nil, nil
	}

	events, err := g.behaviors.FindUserEventsSince(ctx, q.UserID, g.now().Add(-g.cfg.ContentWindow),
		domain.BehaviorLike, domain.BehaviorPurchase, domain.BehaviorView)
	if err != nil {
		return nil, fmt.Errorf("failed to load user interactions: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	products, err := g.catalog.FindByIDs(ctx, distinctProductIDs(events))
	if err != nil {
		return nil, fmt.Errorf("failed to load interacted products: %w", err)
	}
	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	catAffinity := map[uint64]float64{}
	brandAffinity := map[uint64]float64{}
	for _, ev := range events {
		p, ok := byID[ev.ProductID]
		if !ok {
			continue
		}
		w := g.cfg.ContentWeights.Weight(ev.BehaviorType)
		if p.CategoryID != 0 {
			catAffinity[p.CategoryID] += w
		}
		if p.BrandID != 0 {
			brandAffinity[p.BrandID] += w
		}
	}

	topCats := topKeys(catAffinity, g.cfg.ContentTopN)
	topBrands := topKeys(brandAffinity, g.cfg.ContentTopN)
	if len(topCats) == 0 && len(topBrands) == 0 {
		return nil, nil
	}

	filter := domain.ProductFilter{
		CategoryID:  q.CategoryID,
		CategoryIDs: topCats,
		BrandIDs:    topBrands,
		MatchAny:    true,
		ExcludeIDs:  append(distinctProductIDs(events), q.ExcludeIDs...),
		OrderBy:     domain.OrderByOverall,
		Limit:       q.Limit,
	}
	if lo, hi, ok := priceBand(products, g.cfg.ContentSingleBand); ok {
		filter.MinPrice, filter.MaxPrice = &lo, &hi
	}

	candidates, err := g.catalog.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load content candidates: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		score := 0.5 +
			math.Min(catAffinity[c.CategoryID]/g.cfg.ContentAffinityNorm, 1)*0.3 +
			math.Min(brandAffinity[c.BrandID]/g.cfg.ContentAffinityNorm, 1)*0.2
		out = append(out, domain.Recommendation{
			ProductID: c.ID,
			Score:     math.Min(score, 1),
			Algorithm: SourceContentBased,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	return out, nil
}

// priceBand returns mean ± one standard deviation of the product prices, or
// mean ± singleBand·mean when there is only one distinct price.
func priceBand(products []domain.Product, singleBand float64) (float64, float64, bool) {
	var prices []float64
	for _, p := range products {
		if p.Price > 0 {
			prices = append(prices, p.Price)
		}
	}
	if len(prices) == 0 {
		return 0, 0, false
	}

	var sum float64
	for _, v := range prices {
		sum += v
	}
	mean := sum / float64(len(prices))

	var sq float64
	for _, v := range prices {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(prices)))

	if len(prices) == 1 || std == 0 {
		return mean * (1 - singleBand), mean * (1 + singleBand), true
	}

	return math.Max(0, mean-std), mean + std, true
}

// ---- behavioral pattern ----

type behavioralGenerator struct {
	behaviors BehaviorQuery
	catalog   Catalog
	cfg       Config
	now       clock
}

func (g *behavioralGenerator) Name() string { return SourceBehavioral }

func (g *behavioralGenerator) Generate(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	if q.UserID == 0 {
		return nil, nil
	}

	views, err := g.behaviors.FindUserEventsSince(ctx, q.UserID, g.now().Add(-g.cfg.BehavioralWindow), domain.BehaviorView)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent views: %w", err)
	}
	if len(views) == 0 {
		return nil, nil
	}

	visited := distinctProductIDs(views)
	products, err := g.catalog.FindByIDs(ctx, visited)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewed products: %w", err)
	}

	var categories []uint64
	seen := map[uint64]struct{}{}
	for _, p := range products {
		if p.CategoryID == 0 {
			continue
		}
		if _, ok := seen[p.CategoryID]; !ok {
			seen[p.CategoryID] = struct{}{}
			categories = append(categories, p.CategoryID)
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}

	candidates, err := g.catalog.FindCandidates(ctx, domain.ProductFilter{
		CategoryID:  q.CategoryID,
		CategoryIDs: categories,
		ExcludeIDs:  append(visited, q.ExcludeIDs...),
		OrderBy:     domain.OrderByTrending,
		Limit:       q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load behavioral candidates: %w", err)
	}

	return fixedScore(candidates, g.cfg.BehavioralScore, SourceBehavioral), nil
}

// ---- trending ----

type trendingGenerator struct {
	catalog Catalog
}

func (g *trendingGenerator) Name() string { return SourceTrending }

func (g *trendingGenerator) Generate(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	candidates, err := g.catalog.FindCandidates(ctx, domain.ProductFilter{
		CategoryID:   q.CategoryID,
		ExcludeIDs:   q.ExcludeIDs,
		OnlyTrending: true,
		OrderBy:      domain.OrderByTrending,
		Limit:        q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load trending products: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.TrendingScore <= 0 {
			continue
		}
		out = append(out, domain.Recommendation{
			ProductID: c.ID,
			Score:     math.Min(c.TrendingScore, 1),
			Algorithm: SourceTrending,
		})
	}

	return out, nil
}

// ---- popularity ----

type popularityGenerator struct {
	catalog Catalog
	cfg     Config
}

func (g *popularityGenerator) Name() string { return SourcePopularity }

func (g *popularityGenerator) Generate(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	candidates, err := g.catalog.FindCandidates(ctx, domain.ProductFilter{
		CategoryID: q.CategoryID,
		ExcludeIDs: q.ExcludeIDs,
		OrderBy:    domain.OrderByPopularity,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load popular products: %w", err)
	}

	return fixedScore(candidates, g.cfg.PopularityScore, domain.AlgorithmPopularity), nil
}

// ---- helpers ----

func fixedScore(candidates []domain.ScoredProduct, score float64, algorithm string) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.Recommendation{ProductID: c.ID, Score: score, Algorithm: algorithm})
	}
	return out
}

func distinctProductIDs(events []domain.BehaviorEvent) []uint64 {
	seen := make(map[uint64]struct{}, len(events))
	ids := make([]uint64, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		ids = append(ids, ev.ProductID)
	}
	return ids
}

func idSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// topKeys returns up to n keys with the highest positive value, ties by key.
func topKeys(m map[uint64]float64, n int) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k, v := range m {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func truncate(items []domain.Recommendation, limit int) []domain.Recommendation {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
