package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "promptrelay_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	generateRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptrelay_generate_requests_total",
			Help: "Generate calls by model key and outcome",
		},
		[]string{"model", "outcome"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptrelay_upstream_duration_seconds",
			Help:    "Upstream chat-completion call duration",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"model"},
	)

	apiKeyConfigured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promptrelay_api_key_configured",
			Help: "1 when an upstream credential is configured",
		},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, generateRequests, upstreamDuration, apiKeyConfigured)
}

// SetServerBuildInfo sets the build info metric for the server.
func SetServerBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// SetAPIKeyConfigured records whether a credential is present.
func SetAPIKeyConfigured(ok bool) {
	if ok {
		apiKeyConfigured.Set(1)
		return
	}
	apiKeyConfigured.Set(0)
}

// RecordGenerate increments the generate counter; outcome is "success" or an error kind.
func RecordGenerate(model, outcome string) {
	generateRequests.WithLabelValues(model, outcome).Inc()
}

// ObserveUpstreamDuration records the duration of an upstream call.
func ObserveUpstreamDuration(model string, d time.Duration) {
	upstreamDuration.WithLabelValues(model).Observe(d.Seconds())
}
