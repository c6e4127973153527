package recommend

import (
	"context"
	"fmt"
	"math"

	"bestinclick/domain"
)

// similarProducts ranks active products of the seed's category within the
// configured price band around the seed price.
func (s *RecommendationService) similarProducts(ctx context.Context, seed domain.Product, limit int) ([]domain.Recommendation, error) {
	filter := domain.ProductFilter{
		CategoryID: seed.CategoryID,
		ExcludeIDs: []uint64{seed.ID},
		OrderBy:    domain.OrderByOverall,
		Limit:      limit,
	}
	if seed.Price > 0 {
		lo := seed.Price * (1 - s.cfg.SimilarPriceBand)
		hi := seed.Price * (1 + s.cfg.SimilarPriceBand)
		filter.MinPrice, filter.MaxPrice = &lo, &hi
	}

	candidates, err := s.catalog.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load similar products: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		score := 0.8 - float64(i)*0.05
		if seed.BrandID != 0 && c.BrandID == seed.BrandID {
			score += 0.1
		}
		out = append(out, domain.Recommendation{
			ProductID: c.ID,
			Score:     math.Min(math.Max(0.1, score), 1),
			Algorithm: domain.AlgorithmContentSimilarity,
		})
	}

	return out, nil
}

// sessionBased recommends from an anonymous session's recent behavior. It also
// returns the products the session already touched.
func (s *RecommendationService) sessionBased(ctx context.Context, q Query) ([]domain.Recommendation, []uint64, error) {
	events, err := s.behaviors.FindSessionEventsSince(ctx, q.SessionKey, s.now().Add(-s.cfg.SessionWindow))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session behaviors: %w", err)
	}
	if len(events) == 0 {
		return nil, nil, nil
	}

	touched := distinctProductIDs(events)
	products, err := s.catalog.FindByIDs(ctx, touched)
	if err != nil {
		return nil, touched, fmt.Errorf("failed to load session products: %w", err)
	}

	var categories, brands []uint64
	catSeen, brandSeen := map[uint64]struct{}{}, map[uint64]struct{}{}
	var priceSum float64
	var priced int
	for _, p := range products {
		if _, ok := catSeen[p.CategoryID]; !ok && p.CategoryID != 0 {
			catSeen[p.CategoryID] = struct{}{}
			categories = append(categories, p.CategoryID)
		}
		if _, ok := brandSeen[p.BrandID]; !ok && p.BrandID != 0 {
			brandSeen[p.BrandID] = struct{}{}
			brands = append(brands, p.BrandID)
		}
		if p.Price > 0 {
			priceSum += p.Price
			priced++
		}
	}
	if len(categories) == 0 && len(brands) == 0 {
		return nil, touched, nil
	}

	filter := domain.ProductFilter{
		CategoryID:  q.CategoryID,
		CategoryIDs: categories,
		BrandIDs:    brands,
		MatchAny:    true,
		ExcludeIDs:  append(touched, q.ExcludeIDs...),
		OrderBy:     domain.OrderByOverall,
		Limit:       q.Limit,
	}
	if priced > 0 {
		mean := priceSum / float64(priced)
		lo, hi := mean*(1-s.cfg.SessionPriceBand), mean*(1+s.cfg.SessionPriceBand)
		filter.MinPrice, filter.MaxPrice = &lo, &hi
	}

	candidates, err := s.catalog.FindCandidates(ctx, filter)
	if err != nil {
		return nil, touched, fmt.Errorf("failed to load session candidates: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		out = append(out, domain.Recommendation{
			ProductID: c.ID,
			Score:     math.Max(0.1, 0.7-float64(i)*0.02),
			Algorithm: domain.AlgorithmSessionBased,
		})
	}

	return out, touched, nil
}

// general walks the non-personalised ladder: scored products first, then
// rating-based, then the newest products. Lower rungs are appended via TopUp.
func (s *RecommendationService) general(ctx context.Context, q Query) ([]domain.Recommendation, error) {
	exclude := append([]uint64(nil), q.ExcludeIDs...)
	var out []domain.Recommendation

	scored, err := s.catalog.FindCandidates(ctx, domain.ProductFilter{
		CategoryID: q.CategoryID,
		ExcludeIDs: exclude,
		OnlyScored: true,
		OrderBy:    domain.OrderByOverall,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scored products: %w", err)
	}
	for _, c := range scored {
		out = append(out, domain.Recommendation{ProductID: c.ID, Score: c.OverallScore, Algorithm: domain.AlgorithmAIScored})
	}

	if len(out) < q.Limit {
		exclude = append(exclude, productIDs(out)...)
		rated, err := s.catalog.FindCandidates(ctx, domain.ProductFilter{
			CategoryID: q.CategoryID,
			ExcludeIDs: exclude,
			OrderBy:    domain.OrderByRating,
			Limit:      q.Limit - len(out),
		})
		if err != nil {
			return out, fmt.Errorf("failed to load rated products: %w", err)
		}
		var next []domain.Recommendation
		for _, c := range rated {
			if c.AverageRating <= 0 {
				continue
			}
			next = append(next, domain.Recommendation{ProductID: c.ID, Score: ratingScore(c.Product), Algorithm: domain.AlgorithmRatingBased})
		}
		out = TopUp(out, next, q.Limit)
	}

	if len(out) < q.Limit {
		exclude = append(exclude, productIDs(out)...)
		newest, err := s.catalog.FindCandidates(ctx, domain.ProductFilter{
			CategoryID: q.CategoryID,
			ExcludeIDs: exclude,
			OrderBy:    domain.OrderByNewest,
			Limit:      q.Limit - len(out),
		})
		if err != nil {
			return out, fmt.Errorf("failed to load newest products: %w", err)
		}
		out = TopUp(out, fixedScore(newest, 0.6, domain.AlgorithmNewest), q.Limit)
	}

	return truncate(out, q.Limit), nil
}

func ratingScore(p domain.Product) float64 {
	rating := p.AverageRating / 5
	reviews := math.Min(float64(p.ReviewCount)/50, 1)
	views := math.Min(float64(p.ViewCount)/1000, 1)
	return math.Min(rating*0.5+reviews*0.3+views*0.2, 1)
}
