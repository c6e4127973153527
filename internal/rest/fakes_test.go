package rest

import (
	"context"
	"sync"

	"bestinclick/business/behavior"
	"bestinclick/business/jobs"
	"bestinclick/business/recommend"
	"bestinclick/domain"

	"github.com/google/uuid"
)

type fakeRecommendationService struct {
	lastReq     recommend.Request
	lastProduct uint64
	lastLimit   int
	resp        recommend.Response
	err         error
}

func (f *fakeRecommendationService) GetRecommendations(_ context.Context, req recommend.Request) (recommend.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeRecommendationService) GetSimilarProducts(_ context.Context, productID uint64, limit int) (recommend.Response, error) {
	f.lastProduct = productID
	f.lastLimit = limit
	return f.resp, f.err
}

func (f *fakeRecommendationService) GetTrendingProducts(_ context.Context, limit int) (recommend.Response, error) {
	f.lastLimit = limit
	return f.resp, f.err
}

type fakeBehaviorService struct {
	last behavior.BehaviorInput
	err  error
}

func (f *fakeBehaviorService) RecordBehavior(_ context.Context, in behavior.BehaviorInput) (domain.BehaviorEvent, error) {
	f.last = in
	if f.err != nil {
		return domain.BehaviorEvent{}, f.err
	}
	return domain.BehaviorEvent{ID: 1, ProductID: in.ProductID, BehaviorType: in.BehaviorType}, nil
}

type fakeTrackingService struct {
	session uuid.UUID
	product uint64
	action  string
	perf    domain.SessionPerformance
	viewer  domain.Viewer
	err     error
}

func (f *fakeTrackingService) TrackFeedback(_ context.Context, sessionID uuid.UUID, productID uint64, action string) error {
	f.session, f.product, f.action = sessionID, productID, action
	return f.err
}

func (f *fakeTrackingService) SessionPerformance(_ context.Context, sessionID uuid.UUID, viewer domain.Viewer) (domain.SessionPerformance, error) {
	f.session, f.viewer = sessionID, viewer
	return f.perf, f.err
}

type fakeJobRunner struct {
	mu   sync.Mutex
	runs []string
	err  error
}

func (f *fakeJobRunner) RunScores(context.Context, jobs.ScoreOptions) (domain.BatchReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, jobs.JobScores)
	return domain.BatchReport{Processed: 3}, f.err
}

func (f *fakeJobRunner) RunSimilarities(context.Context, jobs.SimilarityOptions) (domain.BatchReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, jobs.JobSimilarities)
	return domain.BatchReport{Processed: 1}, f.err
}
