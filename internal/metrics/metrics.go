package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeatherFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_weather_fetches_total",
			Help: "Total weather source fetches",
		},
		[]string{"scheme", "status"},
	)

	WeatherFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenhouse_weather_fetch_latency_seconds",
			Help:    "Weather source fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)

	WeatherRecordsFlagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_weather_records_flagged_total",
			Help: "Weather records raising a quality flag",
		},
		[]string{"flag"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_runs_total",
			Help: "Total simulation runs by outcome",
		},
		[]string{"kind", "outcome"},
	)

	StepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenhouse_steps_total",
			Help: "Total integrated time steps",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenhouse_run_duration_seconds",
			Help:    "Wall time of one simulation run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"kind"},
	)

	TrialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_optimize_trials_total",
			Help: "Total optimisation trials by outcome",
		},
		[]string{"objective", "outcome"},
	)

	BestObjective = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greenhouse_optimize_best_objective",
			Help: "Best objective value of the running optimisation",
		},
		[]string{"objective"},
	)
)
