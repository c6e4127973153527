package recommend

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Request struct {
	UserID     *uint
	SessionKey string
	Limit      int
	CategoryID uint64
	ExcludeIDs []uint64
}

type Response struct {
	SessionID      *uuid.UUID              `json:"session_id,omitempty"`
	Items          []domain.Recommendation `json:"recommendations"`
	FallbackTier   string                  `json:"fallback_tier"`
	AlgorithmsUsed []string                `json:"algorithms_used"`
	Cached         bool                    `json:"cached"`
}

type RecommendationService struct {
	behaviors  BehaviorQuery
	catalog    Catalog
	cache      Cache
	recorder   SessionRecorder
	generators []Generator
	popularity Generator
	trending   Generator
	cfg        Config
	now        clock
}

// NewRecommendationService wires the five candidate generators. cache and
// recorder are optional.
func NewRecommendationService(
	behaviors BehaviorQuery,
	similarities SimilarityQuery,
	catalog Catalog,
	cache Cache,
	recorder SessionRecorder,
	cfg Config,
) *RecommendationService {
	s := &RecommendationService{
		behaviors: behaviors,
		catalog:   catalog,
		cache:     cache,
		recorder:  recorder,
		cfg:       cfg,
		now:       time.Now,
	}

	now := func() time.Time { return s.now() }
	s.popularity = &popularityGenerator{catalog: catalog, cfg: cfg}
	s.trending = &trendingGenerator{catalog: catalog}
	s.generators = []Generator{
		&collaborativeGenerator{behaviors: behaviors, similarities: similarities, catalog: catalog, cfg: cfg, now: now},
		&contentGenerator{behaviors: behaviors, catalog: catalog, cfg: cfg, now: now},
		&behavioralGenerator{behaviors: behaviors, catalog: catalog, cfg: cfg, now: now},
		s.trending,
		s.popularity,
	}

	return s
}

// GetRecommendations always answers with some list, possibly empty. Only a
// malformed request returns an error.
func (s *RecommendationService) GetRecommendations(ctx context.Context, req Request) (Response, error) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		return Response{}, domain.NewValidationError("limit", fmt.Sprintf("must be at most %d", maxLimit))
	}

	q := Query{
		SessionKey: req.SessionKey,
		Limit:      req.Limit,
		CategoryID: req.CategoryID,
		ExcludeIDs: req.ExcludeIDs,
	}
	if req.UserID != nil {
		q.UserID = *req.UserID
	}

	scope, variant := cacheScope(req), cacheVariant(req)

	version, cacheable := s.cacheVersion(ctx, scope)

	var resp Response
	var cached domain.CachedRecommendations
	var hit bool
	if cacheable {
		cached, hit = s.cacheGet(ctx, scope, version, variant)
	}

	if hit {
		resp = Response{
			Items:          cached.Items,
			FallbackTier:   cached.FallbackTier,
			AlgorithmsUsed: cached.AlgorithmsUsed,
			Cached:         true,
		}
	} else {
		reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		items, tier, algorithms := s.serve(reqCtx, req, q)
		timedOut := reqCtx.Err() != nil
		cancel()

		resp = Response{Items: items, FallbackTier: tier, AlgorithmsUsed: algorithms}
		if cacheable && !timedOut && tier != domain.TierEmpty {
			s.cacheSet(ctx, scope, version, variant, domain.CachedRecommendations{
				Items:          items,
				FallbackTier:   tier,
				AlgorithmsUsed: algorithms,
			})
		}
	}

	resp.SessionID = s.track(ctx, req.UserID, req.SessionKey, recommendationType(resp.FallbackTier), resp.FallbackTier, resp.Items)
	recommendationsServed.WithLabelValues(resp.FallbackTier).Inc()

	return resp, nil
}

func (s *RecommendationService) serve(ctx context.Context, req Request, q Query) ([]domain.Recommendation, string, []string) {
	coldStart := true

	switch {
	case req.UserID != nil:
		has, err := s.behaviors.HasUserBehavior(ctx, q.UserID)
		if err != nil {
			logger.Warn("failed to check user history", "user_id", q.UserID, "error", err)
			return s.fallback(ctx, q)
		}
		if has {
			coldStart = false
			items, algorithms := s.personalized(ctx, q)
			if ctx.Err() != nil {
				logger.Warn("personalized recommendations timed out", "user_id", q.UserID)
				return s.fallback(ctx, q)
			}
			if len(items) > 0 {
				return items, domain.TierPersonalized, algorithms
			}
		}

	case req.SessionKey != "":
		items, touched, err := s.sessionBased(ctx, q)
		if err != nil {
			logger.Warn("session recommendations failed", "session_id", q.SessionKey, "error", err)
		}
		if len(items) > 0 {
			coldStart = false
			if len(items) < q.Limit {
				exclude := append(append(productIDs(items), touched...), q.ExcludeIDs...)
				rest, err := s.general(ctx, Query{CategoryID: q.CategoryID, ExcludeIDs: exclude, Limit: q.Limit - len(items)})
				if err != nil {
					logger.Warn("general recommendations failed", "error", err)
				}
				items = TopUp(items, rest, q.Limit)
			}
			return items, domain.TierSession, algorithmsOf(items)
		}
	}

	if coldStart && q.CategoryID == 0 {
		return s.fallback(ctx, q)
	}

	items, err := s.general(ctx, q)
	if err != nil {
		logger.Warn("general recommendations failed", "error", err)
	}
	if len(items) > 0 && ctx.Err() == nil {
		return items, domain.TierGeneral, algorithmsOf(items)
	}

	return s.fallback(ctx, q)
}

// personalized runs every generator concurrently and blends their output.
// A failing generator contributes nothing.
func (s *RecommendationService) personalized(ctx context.Context, q Query) ([]domain.Recommendation, []string) {
	lists := make([]CandidateList, len(s.generators))

	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range s.generators {
		g.Go(func() error {
			gq := q
			if gen.Name() != SourceTrending && gen.Name() != SourcePopularity {
				gq.Limit = q.Limit * 2
			}

			start := time.Now()
			items, err := gen.Generate(gctx, gq)
			generatorLatency.WithLabelValues(gen.Name()).Observe(time.Since(start).Seconds())
			if err != nil {
				generatorFailures.WithLabelValues(gen.Name()).Inc()
				logger.Warn("candidate generator failed", "generator", gen.Name(), "user_id", q.UserID, "error", err)
				items = nil
			}

			lists[i] = CandidateList{Source: gen.Name(), Items: items}
			return nil
		})
	}
	_ = g.Wait()

	var algorithms []string
	for _, l := range lists {
		if len(l.Items) > 0 {
			algorithms = append(algorithms, l.Source)
		}
	}

	ranked := Rank(lists, s.cfg.Blend, s.cfg.AgreementBoost, q.Limit)
	if len(ranked) > 0 && len(ranked) < q.Limit && ctx.Err() == nil {
		fq := q
		fq.ExcludeIDs = append(productIDs(ranked), q.ExcludeIDs...)
		fq.Limit = q.Limit - len(ranked)
		fallback, err := s.popularity.Generate(ctx, fq)
		if err != nil {
			logger.Warn("popularity top-up failed", "error", err)
		}
		ranked = TopUp(ranked, fallback, q.Limit)
	}

	return ranked, algorithms
}

// fallback serves popularity only. It runs on a fresh budget when ctx is already done.
func (s *RecommendationService) fallback(ctx context.Context, q Query) ([]domain.Recommendation, string, []string) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
		defer cancel()
	}

	items, err := s.popularity.Generate(ctx, q)
	if err != nil {
		generatorFailures.WithLabelValues(SourcePopularity).Inc()
		logger.Error("popularity fallback failed", "error", err)
		return []domain.Recommendation{}, domain.TierEmpty, nil
	}
	if len(items) == 0 {
		return []domain.Recommendation{}, domain.TierEmpty, nil
	}

	return items, domain.TierFallback, []string{domain.AlgorithmPopularity}
}

// GetSimilarProducts returns products close to productID by category, price and brand.
func (s *RecommendationService) GetSimilarProducts(ctx context.Context, productID uint64, limit int) (Response, error) {
	if productID == 0 {
		return Response{}, domain.NewValidationError("product_id", "is required")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxLimit {
		return Response{}, domain.NewValidationError("limit", fmt.Sprintf("must be at most %d", maxLimit))
	}

	seed, found, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to load product: %w", err)
	}
	if !found || !seed.IsActive {
		return Response{}, domain.NewNotFoundError("product", productID)
	}

	items, err := s.similarProducts(ctx, seed, limit)
	if err != nil {
		return Response{}, err
	}

	tier := domain.TierGeneral
	algorithms := []string{domain.AlgorithmContentSimilarity}
	if len(items) == 0 {
		tier, algorithms = domain.TierEmpty, nil
		items = []domain.Recommendation{}
	}

	return Response{
		SessionID:      s.track(ctx, nil, "", domain.RecTypeSimilar, tier, items),
		Items:          items,
		FallbackTier:   tier,
		AlgorithmsUsed: algorithms,
	}, nil
}

// GetTrendingProducts lists trending products, topped up with popular ones.
func (s *RecommendationService) GetTrendingProducts(ctx context.Context, limit int) (Response, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		return Response{}, domain.NewValidationError("limit", fmt.Sprintf("must be at most %d", maxLimit))
	}

	q := Query{Limit: limit}
	items, err := s.trending.Generate(ctx, q)
	if err != nil {
		generatorFailures.WithLabelValues(SourceTrending).Inc()
		logger.Warn("trending generator failed", "error", err)
	}

	tier := domain.TierGeneral
	if len(items) == 0 {
		var algorithms []string
		items, tier, algorithms = s.fallback(ctx, q)
		return Response{
			SessionID:      s.track(ctx, nil, "", domain.RecTypeTrending, tier, items),
			Items:          items,
			FallbackTier:   tier,
			AlgorithmsUsed: algorithms,
		}, nil
	}

	if len(items) < limit {
		fallback, err := s.popularity.Generate(ctx, Query{Limit: limit - len(items), ExcludeIDs: productIDs(items)})
		if err != nil {
			logger.Warn("popularity top-up failed", "error", err)
		}
		items = TopUp(items, fallback, limit)
	}

	return Response{
		SessionID:      s.track(ctx, nil, "", domain.RecTypeTrending, tier, items),
		Items:          items,
		FallbackTier:   tier,
		AlgorithmsUsed: algorithmsOf(items),
	}, nil
}

func (s *RecommendationService) track(ctx context.Context, userID *uint, sessionKey, recType, tier string, items []domain.Recommendation) *uuid.UUID {
	if s.recorder == nil || len(items) == 0 {
		return nil
	}

	id, err := s.recorder.StartSession(ctx, domain.SessionInput{
		UserID:             userID,
		SessionKey:         sessionKey,
		RecommendationType: recType,
		FallbackTier:       tier,
		Items:              items,
	})
	if err != nil {
		logger.Warn("failed to record recommendation session", "error", err)
		return nil
	}

	return &id
}

// cacheVersion reports false when the cache is absent or unreachable; the
// request then neither reads nor writes it.
func (s *RecommendationService) cacheVersion(ctx context.Context, scope string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}

	version, err := s.cache.Version(ctx, scope)
	if err != nil {
		logger.Debug("recommendation cache version read failed", "scope", scope, "error", err)
		return 0, false
	}

	return version, true
}

func (s *RecommendationService) cacheGet(ctx context.Context, scope string, version int64, variant string) (domain.CachedRecommendations, bool) {
	v, ok, err := s.cache.Get(ctx, scope, version, variant)
	if err != nil {
		logger.Debug("recommendation cache read failed", "scope", scope, "error", err)
		return domain.CachedRecommendations{}, false
	}

	return v, ok
}

func (s *RecommendationService) cacheSet(ctx context.Context, scope string, version int64, variant string, v domain.CachedRecommendations) {
	if err := s.cache.Set(ctx, scope, version, variant, v, s.cfg.CacheTTL); err != nil {
		logger.Debug("recommendation cache write failed", "scope", scope, "error", err)
	}
}

func cacheScope(req Request) string {
	return domain.CacheScope(req.UserID, req.SessionKey)
}

func cacheVariant(req Request) string {
	ex := append([]uint64(nil), req.ExcludeIDs...)
	sort.Slice(ex, func(i, j int) bool { return ex[i] < ex[j] })

	parts := make([]string, 0, len(ex))
	for _, id := range ex {
		parts = append(parts, strconv.FormatUint(id, 10))
	}

	return fmt.Sprintf("l%d:c%d:x%s", req.Limit, req.CategoryID, strings.Join(parts, ","))
}

func recommendationType(tier string) string {
	switch tier {
	case domain.TierPersonalized:
		return domain.RecTypePersonalized
	case domain.TierSession:
		return domain.RecTypeSession
	default:
		return domain.RecTypeGeneral
	}
}

func algorithmsOf(items []domain.Recommendation) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, it := range items {
		if _, ok := seen[it.Algorithm]; ok {
			continue
		}
		seen[it.Algorithm] = struct{}{}
		out = append(out, it.Algorithm)
	}
	return out
}
