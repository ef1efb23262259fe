package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(generationJobsTotal, callbacksTotal) }

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_total",
		Help: "Generation job terminal outcomes, labeled by subject kind and status.",
	},
	[]string{"kind", "status"},
)

var callbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_callbacks_total",
		Help: "Inbound worker callbacks by result (completed/empty/rejected/unknown_subject/error).",
	},
	[]string{"result"},
)

func IncJob(kind, status string) {
	generationJobsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func IncCallback(result string) {
	callbacksTotal.WithLabelValues(norm(result)).Inc()
}
