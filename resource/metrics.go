package resource

import "github.com/prometheus/client_golang/prometheus"

// Metric families follow the teacher's engine/metrics.go registration idiom:
// one Namespace/Subsystem per subsystem, labeled vectors registered once at
// package init.
var (
	metricUsage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gateway",
			Subsystem: "resource",
			Name:      "usage_current",
			Help:      "Current resource usage per component and kind",
		},
		[]string{"component", "kind"},
	)

	metricPeak = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gateway",
			Subsystem: "resource",
			Name:      "usage_peak",
			Help:      "Peak resource usage per component and kind",
		},
		[]string{"component", "kind"},
	)

	metricQuota = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gateway",
			Subsystem: "resource",
			Name:      "quota",
			Help:      "Configured resource quota per component and kind",
		},
		[]string{"component", "kind"},
	)

	metricViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "resource",
			Name:      "quota_violations_total",
			Help:      "Total quota violations per component and kind",
		},
		[]string{"component", "kind"},
	)
)

func init() {
	prometheus.MustRegister(metricUsage, metricPeak, metricQuota, metricViolations)
}
