package scoring

import "github.com/prometheus/client_golang/prometheus"

var scoreRefreshTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "product_score_refresh_total",
		Help: "Count of product score recomputations by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(scoreRefreshTotal)
}
