package similarity

import "github.com/prometheus/client_golang/prometheus"

var similarityRefreshUsers = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "user_similarity_refresh_users_total",
	Help: "Users whose similarity rows were recomputed by the batch refresh.",
})

func init() {
	prometheus.MustRegister(similarityRefreshUsers)
}
