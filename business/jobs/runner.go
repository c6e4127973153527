package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	JobScores       = "scores"
	JobSimilarities = "similarities"

	lockPrefix = "recommend:job:"
)

// ErrJobLocked is returned when another run of the same job holds the lock.
var ErrJobLocked = errors.New("job is already running")

// Locker is a named lease. Unlock must only release a lease still owned by token.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

type ProductLister interface {
	ListActiveProductIDs(ctx context.Context, limit int) ([]uint64, error)
}

type ScoreRefresher interface {
	RefreshProducts(ctx context.Context, productIDs []uint64) (domain.BatchReport, error)
}

type SimilarityRefresher interface {
	RefreshSimilarities(ctx context.Context, maxUsers int) (domain.BatchReport, error)
}

type Config struct {
	BatchSize     int
	RatePerSecond float64
	LockTTL       time.Duration
	MaxProducts   int
	MaxUsers      int
}

const (
	defaultBatchSize     = 100
	defaultRatePerSecond = 50
	defaultLockTTL       = 30 * time.Minute
	defaultMaxUsers      = 1000
)

func DefaultConfig() Config {
	return Config{
		BatchSize:     defaultBatchSize,
		RatePerSecond: defaultRatePerSecond,
		LockTTL:       defaultLockTTL,
		MaxUsers:      defaultMaxUsers,
	}
}

type ScoreOptions struct {
	// refresh only these products; empty means every active product
	ProductIDs []uint64
	BatchSize  int
}

type SimilarityOptions struct {
	MaxUsers int
}

type Runner struct {
	locker       Locker
	products     ProductLister
	scores       ScoreRefresher
	similarities SimilarityRefresher
	cfg          Config
}

func NewRunner(locker Locker, products ProductLister, scores ScoreRefresher, similarities SimilarityRefresher, cfg Config) *Runner {
	return &Runner{
		locker:       locker,
		products:     products,
		scores:       scores,
		similarities: similarities,
		cfg:          cfg,
	}
}

// RunScores refreshes product scores in paced batches.
func (r *Runner) RunScores(ctx context.Context, opts ScoreOptions) (report domain.BatchReport, err error) {
	release, err := r.lock(ctx, JobScores)
	if err != nil {
		return domain.BatchReport{}, err
	}
	defer release()
	defer func() { observeRun(JobScores, report, err) }()

	ids := opts.ProductIDs
	if len(ids) == 0 {
		ids, err = r.products.ListActiveProductIDs(ctx, r.cfg.MaxProducts)
		if err != nil {
			return domain.BatchReport{}, fmt.Errorf("failed to list products: %w", err)
		}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = r.cfg.BatchSize
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	limiter := r.limiter(batchSize)
	start := time.Now()

	for i := 0; i < len(ids); i += batchSize {
		end := min(i+batchSize, len(ids))
		batch := ids[i:end]

		if err := limiter.WaitN(ctx, len(batch)); err != nil {
			report.Skipped += len(ids) - i
			logger.Warn("score job stopped early",
				"processed", report.Processed,
				"failed", report.Failed,
				"skipped", report.Skipped,
				"error", err,
			)
			return report, nil
		}

		part, err := r.scores.RefreshProducts(ctx, batch)
		report.Processed += part.Processed
		report.Failed += part.Failed
		report.Skipped += part.Skipped
		if err != nil {
			report.Skipped += len(ids) - end
			logger.Warn("score job interrupted", "processed", report.Processed, "skipped", report.Skipped, "error", err)
			return report, nil
		}
	}

	logger.Info("score job finished",
		"products", len(ids),
		"processed", report.Processed,
		"failed", report.Failed,
		"duration", time.Since(start).String(),
	)

	return report, nil
}

// RunSimilarities refreshes user similarity pairs for the most active users.
func (r *Runner) RunSimilarities(ctx context.Context, opts SimilarityOptions) (report domain.BatchReport, err error) {
	release, err := r.lock(ctx, JobSimilarities)
	if err != nil {
		return domain.BatchReport{}, err
	}
	defer release()
	defer func() { observeRun(JobSimilarities, report, err) }()

	maxUsers := opts.MaxUsers
	if maxUsers <= 0 {
		maxUsers = r.cfg.MaxUsers
	}

	start := time.Now()
	report, err = r.similarities.RefreshSimilarities(ctx, maxUsers)
	if err != nil {
		return report, fmt.Errorf("failed to refresh similarities: %w", err)
	}

	logger.Info("similarity job finished",
		"max_users", maxUsers,
		"processed", report.Processed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", time.Since(start).String(),
	)

	return report, nil
}

func (r *Runner) lock(ctx context.Context, job string) (func(), error) {
	key := lockPrefix + job

	token, ok, err := r.locker.TryLock(ctx, key, r.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s lock: %w", job, err)
	}
	if !ok {
		jobRunsTotal.WithLabelValues(job, "locked").Inc()
		return nil, ErrJobLocked
	}

	return func() {
		// the run's ctx may already be cancelled
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.locker.Unlock(unlockCtx, key, token); err != nil {
			logger.Warn("failed to release job lock", "job", job, "error", err)
		}
	}, nil
}

func (r *Runner) limiter(burst int) *rate.Limiter {
	if r.cfg.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(r.cfg.RatePerSecond), burst)
}
