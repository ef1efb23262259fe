package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		delegatorCallsLatencyMs,
		delegatorErrorsTotal,
	)
}

var (
	delegatorCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delegator_calls_latency_ms",
			Help:    "AI worker call latency distribution in milliseconds, per stage.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000, 180000},
		},
		[]string{"stage", "success"},
	)

	delegatorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegator_errors_total",
			Help: "AI worker call failures per stage and HTTP status (0 = transport).",
		},
		[]string{"stage", "status"},
	)
)

func ObserveDelegatorCall(stage string, latencyMs int64, success bool) {
	delegatorCallsLatencyMs.WithLabelValues(norm(stage), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncDelegatorError(stage string, statusCode int) {
	delegatorErrorsTotal.WithLabelValues(norm(stage), strconv.Itoa(statusCode)).Inc()
}
