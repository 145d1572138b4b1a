package observability

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	promRegistry = prom.NewRegistry()

	requestsTotal = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docforge",
		Name:      "requests_total",
		Help:      "Generative service requests admitted, by category",
	}, []string{"category"})

	retriesTotal = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docforge",
		Name:      "retries_total",
		Help:      "Retried requests, by failure classification",
	}, []string{"kind"})

	windowWaitSeconds = prom.NewCounter(prom.CounterOpts{
		Namespace: "docforge",
		Name:      "window_wait_seconds_total",
		Help:      "Cumulative seconds spent blocked on the sliding rate window",
	})

	artifactsTotal = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "docforge",
		Name:      "artifacts_total",
		Help:      "Resolved media artifacts, by kind",
	}, []string{"kind"})

	sectionsWritten = prom.NewCounter(prom.CounterOpts{
		Namespace: "docforge",
		Name:      "sections_written_total",
		Help:      "Sections that received generated content",
	})
)

var registerMetricsOnce sync.Once

func registerCollectors() {
	registerMetricsOnce.Do(func() {
		promRegistry.MustRegister(requestsTotal, retriesTotal, windowWaitSeconds, artifactsTotal, sectionsWritten)
	})
}

// Registry exposes the process-local prometheus registry (for gathering in
// tests or an optional scrape endpoint).
func Registry() *prom.Registry {
	registerCollectors()
	return promRegistry
}

// RecordRequest counts an admitted request for a pacing category.
func RecordRequest(category string) {
	registerCollectors()
	requestsTotal.WithLabelValues(category).Inc()
}

// RecordRetry counts a retried request; kind is "rate_limit" or "other".
func RecordRetry(kind string) {
	registerCollectors()
	retriesTotal.WithLabelValues(kind).Inc()
}

// RecordWindowWait accumulates time spent blocked on the rate window.
func RecordWindowWait(seconds float64) {
	registerCollectors()
	windowWaitSeconds.Add(seconds)
}

// RecordArtifact counts a resolved artifact; kind is "screenshot" or "diagram".
func RecordArtifact(kind string) {
	registerCollectors()
	artifactsTotal.WithLabelValues(kind).Inc()
}

// RecordSectionWritten counts one completed section body.
func RecordSectionWritten() {
	registerCollectors()
	sectionsWritten.Inc()
}
