package jobs

import (
	"context"
	"errors"
	"time"

	"bestinclick/pkg/logger"
)

// Scheduler refreshes scores hourly and similarities once a day.
type Scheduler struct {
	runner         *Runner
	similarityHour int
}

func NewScheduler(runner *Runner, similarityHour int) *Scheduler {
	return &Scheduler{runner: runner, similarityHour: similarityHour}
}

// Start launches both loops and returns immediately. They stop with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runHourly(ctx, JobScores, func(ctx context.Context) error {
		_, err := s.runner.RunScores(ctx, ScoreOptions{})
		return err
	})

	go s.runDaily(ctx, s.similarityHour, JobSimilarities, func(ctx context.Context) error {
		_, err := s.runner.RunSimilarities(ctx, SimilarityOptions{})
		return err
	})
}

func (s *Scheduler) runDaily(ctx context.Context, hour int, job string, task func(context.Context) error) {
	for {
		timer := time.NewTimer(time.Until(nextDailyRun(time.Now(), hour)))

		select {
		case <-timer.C:
			runTask(ctx, job, task)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runHourly(ctx context.Context, job string, task func(context.Context) error) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runTask(ctx, job, task)
		case <-ctx.Done():
			return
		}
	}
}

func runTask(ctx context.Context, job string, task func(context.Context) error) {
	err := task(ctx)
	switch {
	case errors.Is(err, ErrJobLocked):
		logger.Info("scheduled job skipped, another run holds the lock", "job", job)
	case err != nil:
		logger.Error("scheduled job failed", "job", job, "error", err)
	}
}

// nextDailyRun returns the next occurrence of hour:00 local time strictly after
// now. The next day is built from the calendar so DST shifts keep the hour.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}
