package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"bestinclick/business/jobs"
	"bestinclick/business/scoring"
	"bestinclick/business/similarity"
	psqlRepo "bestinclick/internal/repository/postgres"
	redisRepo "bestinclick/internal/repository/redis"
	"bestinclick/pkg/config"
	"bestinclick/pkg/database"
	redisdb "bestinclick/pkg/database/redis"
	"bestinclick/pkg/logger"
)

type idList []uint64

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

// Set accepts repeated flags as well as comma separated values.
func (l *idList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return errors.New("product ids must be positive integers")
		}
		*l = append(*l, id)
	}
	return nil
}

func main() {
	var products idList
	var maxUsers, batchSize int
	var skipSimilarities, schedule bool
	flag.Var(&products, "products", "product id to rescore (repeatable or comma separated); default all active products")
	flag.IntVar(&maxUsers, "users", 0, "cap on recently active users for the similarity refresh")
	flag.BoolVar(&skipSimilarities, "skip-similarities", false, "only refresh product scores")
	flag.IntVar(&batchSize, "batch-size", 0, "products per batch")
	flag.BoolVar(&schedule, "schedule", false, "keep running: scores hourly, similarities daily")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	redisClient, err := redisdb.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	behaviorRepo := psqlRepo.NewBehaviorRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)

	scoringService := scoring.NewScoringService(behaviorRepo, psqlRepo.NewScoreRepository(db), scoring.DefaultConfig())

	similarityCfg := similarity.DefaultConfig()
	similarityCfg.MaxUsers = cfg.Recommend.SimilarityMaxUsers
	similarityService := similarity.NewSimilarityService(behaviorRepo, psqlRepo.NewSimilarityRepository(db), similarityCfg)

	jobsCfg := jobs.DefaultConfig()
	jobsCfg.BatchSize = cfg.Recommend.ScoreBatchSize
	jobsCfg.RatePerSecond = cfg.Recommend.BatchRatePerSecond
	jobsCfg.LockTTL = cfg.Recommend.JobLockTTL
	jobsCfg.MaxUsers = cfg.Recommend.SimilarityMaxUsers
	runner := jobs.NewRunner(redisRepo.NewJobLock(redisClient), productRepo, scoringService, similarityService, jobsCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0

	report, err := runner.RunScores(ctx, jobs.ScoreOptions{ProductIDs: products, BatchSize: batchSize})
	switch {
	case errors.Is(err, jobs.ErrJobLocked):
		logger.Warn("Score refresh skipped, another run holds the lock")
	case err != nil:
		logger.Error("Score refresh failed", "error", err)
		exitCode = 1
	default:
		logger.Info("Score refresh finished", "processed", report.Processed, "failed", report.Failed, "skipped", report.Skipped)
	}

	if !skipSimilarities {
		report, err := runner.RunSimilarities(ctx, jobs.SimilarityOptions{MaxUsers: maxUsers})
		switch {
		case errors.Is(err, jobs.ErrJobLocked):
			logger.Warn("Similarity refresh skipped, another run holds the lock")
		case err != nil:
			logger.Error("Similarity refresh failed", "error", err)
			exitCode = 1
		default:
			logger.Info("Similarity refresh finished", "processed", report.Processed, "failed", report.Failed, "skipped", report.Skipped)
		}
	}

	if schedule && ctx.Err() == nil {
		logger.Info("Scheduler started", "similarity_hour", cfg.Recommend.SimilarityScheduleH)
		jobs.NewScheduler(runner, cfg.Recommend.SimilarityScheduleH).Start(ctx)
		<-ctx.Done()
		logger.Info("Scheduler stopped")
	}

	if exitCode != 0 {
		logger.Sync()
		os.Exit(exitCode)
	}
}
