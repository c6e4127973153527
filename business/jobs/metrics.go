package jobs

import (
	"bestinclick/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_job_runs_total",
			Help: "Batch job runs by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	jobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_job_items_total",
			Help: "Items handled by batch jobs by job and result.",
		},
		[]string{"job", "result"},
	)
)

func init() {
	prometheus.MustRegister(jobRunsTotal, jobItemsTotal)
}

func observeRun(job string, report domain.BatchReport, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case report.Skipped > 0:
		outcome = "partial"
	}
	jobRunsTotal.WithLabelValues(job, outcome).Inc()

	jobItemsTotal.WithLabelValues(job, "processed").Add(float64(report.Processed))
	jobItemsTotal.WithLabelValues(job, "failed").Add(float64(report.Failed))
	jobItemsTotal.WithLabelValues(job, "skipped").Add(float64(report.Skipped))
}
