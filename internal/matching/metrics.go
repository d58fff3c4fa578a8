package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	likesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_likes_total",
			Help: "Total number of like actions recorded",
		},
	)

	passesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_passes_total",
			Help: "Total number of pass actions recorded",
		},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_matches_total",
			Help: "Total number of mutual matches created",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	gateDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_gate_decisions_total",
			Help: "Messaging gate verdicts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordLike() {
	likesTotal.Inc()
}

func RecordPass() {
	passesTotal.Inc()
}

func RecordMatch() {
	matchesTotal.Inc()
}

func RecordCompatibilityScore(score int) {
	compatibilityScores.Observe(float64(score))
}

func RecordGateDecision(d GateDecision) {
	outcome := "allowed"
	if !d.Allowed {
		outcome = string(d.Reason)
	}
	gateDecisionsTotal.WithLabelValues(outcome).Inc()
}
