package ffi

import "github.com/prometheus/client_golang/prometheus"

// Metric families follow the teacher's engine/metrics.go idiom: one
// Namespace/Subsystem pair per subsystem, registered once at package init.
var (
	metricCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "ffi",
			Name:      "calls_total",
			Help:      "Total cross-language calls by target language and outcome",
		},
		[]string{"language", "outcome"},
	)

	metricCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gateway",
			Subsystem: "ffi",
			Name:      "call_duration_seconds",
			Help:      "Cross-language call latency by target language",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"language"},
	)
)

func init() {
	prometheus.MustRegister(metricCallsTotal, metricCallDuration)
}
