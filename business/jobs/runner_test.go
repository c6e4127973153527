package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bestinclick/domain"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	released []string
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]string{}
	}
	if _, ok := f.held[key]; ok {
		return "", false, nil
	}
	f.held[key] = "token-" + key
	return f.held[key], true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
		f.released = append(f.released, key)
	}
	return nil
}

type fakeLister struct {
	ids   []uint64
	limit int
}

func (f *fakeLister) ListActiveProductIDs(_ context.Context, limit int) ([]uint64, error) {
	f.limit = limit
	return f.ids, nil
}

type fakeScores struct {
	batches [][]uint64
	failIDs map[uint64]bool
	onBatch func()
}

func (f *fakeScores) RefreshProducts(_ context.Context, ids []uint64) (domain.BatchReport, error) {
	f.batches = append(f.batches, append([]uint64(nil), ids...))
	if f.onBatch != nil {
		f.onBatch()
	}
	var r domain.BatchReport
	for _, id := range ids {
		if f.failIDs[id] {
			r.Failed++
		} else {
			r.Processed++
		}
	}
	return r, nil
}

type fakeSimilarities struct {
	maxUsers int
	err      error
}

func (f *fakeSimilarities) RefreshSimilarities(_ context.Context, maxUsers int) (domain.BatchReport, error) {
	f.maxUsers = maxUsers
	return domain.BatchReport{Processed: 3}, f.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RatePerSecond = 0
	return cfg
}

func TestRunScoresBatches(t *testing.T) {
	lister := &fakeLister{ids: []uint64{1, 2, 3, 4, 5}}
	scores := &fakeScores{failIDs: map[uint64]bool{4: true}}
	locker := &fakeLocker{}
	r := NewRunner(locker, lister, scores, &fakeSimilarities{}, testConfig())

	report, err := r.RunScores(context.Background(), ScoreOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("RunScores() error = %v", err)
	}

	if len(scores.batches) != 3 || len(scores.batches[2]) != 1 {
		t.Fatalf("batches = %v", scores.batches)
	}
	if report.Processed != 4 || report.Failed != 1 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(locker.released) != 1 || len(locker.held) != 0 {
		t.Fatal("lock not released")
	}
}

func TestRunScoresExplicitProducts(t *testing.T) {
	lister := &fakeLister{ids: []uint64{1, 2, 3}}
	scores := &fakeScores{}
	r := NewRunner(&fakeLocker{}, lister, scores, &fakeSimilarities{}, testConfig())

	report, err := r.RunScores(context.Background(), ScoreOptions{ProductIDs: []uint64{9}})
	if err != nil {
		t.Fatalf("RunScores() error = %v", err)
	}
	if report.Processed != 1 || len(scores.batches) != 1 || scores.batches[0][0] != 9 {
		t.Fatalf("unexpected run: %+v %v", report, scores.batches)
	}
	if lister.limit != 0 {
		t.Fatal("lister should not be consulted when ids are given")
	}
}

func TestRunScoresSkipsWhenLocked(t *testing.T) {
	locker := &fakeLocker{held: map[string]string{lockPrefix + JobScores: "other"}}
	scores := &fakeScores{}
	r := NewRunner(locker, &fakeLister{ids: []uint64{1}}, scores, &fakeSimilarities{}, testConfig())

	_, err := r.RunScores(context.Background(), ScoreOptions{})
	if !errors.Is(err, ErrJobLocked) {
		t.Fatalf("expected ErrJobLocked, got %v", err)
	}
	if len(scores.batches) != 0 {
		t.Fatal("locked job must not run")
	}
	if locker.held[lockPrefix+JobScores] != "other" {
		t.Fatal("foreign lock was released")
	}
}

func TestRunScoresStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scores := &fakeScores{}
	scores.onBatch = cancel
	r := NewRunner(&fakeLocker{}, &fakeLister{ids: []uint64{1, 2, 3, 4, 5, 6}}, scores, &fakeSimilarities{}, testConfig())

	report, err := r.RunScores(ctx, ScoreOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("RunScores() error = %v", err)
	}
	if report.Processed != 2 || report.Skipped != 4 {
		t.Fatalf("report = %+v, want 2 processed and 4 skipped", report)
	}
}

func TestRunSimilaritiesUsesCap(t *testing.T) {
	sims := &fakeSimilarities{}
	cfg := testConfig()
	cfg.MaxUsers = 250
	r := NewRunner(&fakeLocker{}, &fakeLister{}, &fakeScores{}, sims, cfg)

	if _, err := r.RunSimilarities(context.Background(), SimilarityOptions{}); err != nil {
		t.Fatalf("RunSimilarities() error = %v", err)
	}
	if sims.maxUsers != 250 {
		t.Fatalf("max users = %d, want 250", sims.maxUsers)
	}

	if _, err := r.RunSimilarities(context.Background(), SimilarityOptions{MaxUsers: 10}); err != nil {
		t.Fatalf("RunSimilarities() error = %v", err)
	}
	if sims.maxUsers != 10 {
		t.Fatalf("max users = %d, want 10", sims.maxUsers)
	}
}

func TestRunSimilaritiesReleasesLockOnError(t *testing.T) {
	locker := &fakeLocker{}
	r := NewRunner(locker, &fakeLister{}, &fakeScores{}, &fakeSimilarities{err: errors.New("db down")}, testConfig())

	if _, err := r.RunSimilarities(context.Background(), SimilarityOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if len(locker.held) != 0 {
		t.Fatal("lock held after failed run")
	}
}

func TestNextDailyRun(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 1, 1, 1, 30, 0, 0, loc), time.Date(2025, 1, 1, 3, 0, 0, 0, loc)},
		{time.Date(2025, 1, 1, 3, 0, 0, 0, loc), time.Date(2025, 1, 2, 3, 0, 0, 0, loc)},
		{time.Date(2025, 1, 1, 22, 0, 0, 0, loc), time.Date(2025, 1, 2, 3, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		if got := nextDailyRun(tt.now, 3); !got.Equal(tt.want) {
			t.Errorf("nextDailyRun(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestNextDailyRunKeepsHourAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "spring forward",
			now:  time.Date(2025, 3, 8, 4, 0, 0, 0, loc),
			want: time.Date(2025, 3, 9, 3, 0, 0, 0, loc),
		},
		{
			name: "fall back",
			now:  time.Date(2025, 11, 1, 4, 0, 0, 0, loc),
			want: time.Date(2025, 11, 2, 3, 0, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextDailyRun(tt.now, 3)
			if !got.Equal(tt.want) {
				t.Fatalf("nextDailyRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if got.Hour() != 3 {
				t.Fatalf("hour = %d, want 3", got.Hour())
			}
		})
	}
}
