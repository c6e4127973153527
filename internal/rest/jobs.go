package rest

import (
	"context"
	"errors"
	"net/http"

	"bestinclick/business/jobs"
	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	JobHandler struct {
		runner JobRunner
		// runs the job; replaced in tests to run synchronously
		spawn func(func())
	}

	JobRunner interface {
		RunScores(ctx context.Context, opts jobs.ScoreOptions) (domain.BatchReport, error)
		RunSimilarities(ctx context.Context, opts jobs.SimilarityOptions) (domain.BatchReport, error)
	}
)

func NewJobHandler(runner JobRunner) *JobHandler {
	return &JobHandler{
		runner: runner,
		spawn:  func(f func()) { go f() },
	}
}

// POST /api/v1/admin/jobs/:job
func (h *JobHandler) Trigger(c echo.Context) error {
	job := c.Param("job")

	var run func(ctx context.Context) (domain.BatchReport, error)
	switch job {
	case jobs.JobScores:
		run = func(ctx context.Context) (domain.BatchReport, error) {
			return h.runner.RunScores(ctx, jobs.ScoreOptions{})
		}
	case jobs.JobSimilarities:
		run = func(ctx context.Context) (domain.BatchReport, error) {
			return h.runner.RunSimilarities(ctx, jobs.SimilarityOptions{})
		}
	default:
		return c.JSON(http.StatusNotFound, ResponseError{Message: "unknown job " + job})
	}

	// the job outlives the request
	ctx := context.WithoutCancel(c.Request().Context())
	h.spawn(func() {
		report, err := run(ctx)
		switch {
		case errors.Is(err, jobs.ErrJobLocked):
			logger.Info("Manual job skipped, already running", "job", job)
		case err != nil:
			logger.Error("Manual job failed", "job", job, "error", err)
		default:
			logger.Info("Manual job finished", "job", job, "processed", report.Processed, "failed", report.Failed)
		}
	})

	return c.JSON(http.StatusAccepted, fres.Response.StatusOK("job "+job+" started"))
}
