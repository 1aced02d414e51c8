// Package metrics exposes the process's Prometheus counters at /metrics:
// merges applied or undone, rankings generated, and pending-tournament
// finalize failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MergesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracketrank_merges_applied_total",
			Help: "Total number of player-identity merges applied, by region",
		},
		[]string{"region"},
	)

	MergesUndone = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracketrank_merges_undone_total",
			Help: "Total number of player-identity merges undone, by region",
		},
		[]string{"region"},
	)

	RankingsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracketrank_rankings_generated_total",
			Help: "Total number of ranking regenerations, by region",
		},
		[]string{"region"},
	)

	FinalizeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracketrank_finalize_failures_total",
			Help: "Total number of pending-tournament finalize failures, by reason code",
		},
		[]string{"code"},
	)
)

// Handler serves the Prometheus exposition format for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
