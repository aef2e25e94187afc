package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	httpAPIMetricsNamespace = "http_api"
	vmMetricsNamespace      = "chicken"
)

var (
	metricApiTotalRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: httpAPIMetricsNamespace,
			Name:      "total_hits",
			Help:      "HTTP API requests count",
		},
	)

	metricApiHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: httpAPIMetricsNamespace,
			Name:      "path_hits",
			Help:      "HTTP API paths hits",
		},
		[]string{"status", "path"},
	)

	metricApiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: httpAPIMetricsNamespace,
			Name:      "path_duration",
			Help:      "HTTP API request latency in seconds",
		},
		[]string{"method", "path"},
	)

	metricRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: vmMetricsNamespace,
			Name:      "runs_total",
			Help:      "Program runs by instruction set and outcome kind",
		},
		[]string{"isa", "kind"},
	)

	metricRunSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: vmMetricsNamespace,
			Name:      "run_steps",
			Help:      "Instructions executed per run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricApiTotalRequests,
		metricApiHits,
		metricApiRequestDuration,
		metricRuns,
		metricRunSteps,
	)
}
