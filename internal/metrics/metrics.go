package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genie_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"mode"},
	)

	ModeSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genie_mode_switches_total",
			Help: "Total number of conversation mode switches",
		},
		[]string{"from", "to"},
	)

	Clarifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genie_clarifications_total",
			Help: "Total number of clarification questions asked",
		},
		[]string{"kind"},
	)

	ResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "genie_results_returned",
			Help:    "Number of properties shown per composed result",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genie_catalog_cache_total",
			Help: "Catalog cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "genie_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)
)
