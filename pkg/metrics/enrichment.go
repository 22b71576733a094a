package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EnrichmentMetrics tracks AI completion outcomes.
type EnrichmentMetrics struct {
	latency   prometheus.Histogram
	outcomes  *prometheus.CounterVec
	cacheHits prometheus.Counter
}

// NewEnrichmentMetrics registers enrichment metrics on the provided registerer.
func NewEnrichmentMetrics(reg prometheus.Registerer) *EnrichmentMetrics {
	if reg == nil {
		return &EnrichmentMetrics{}
	}
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrichment_call_duration_seconds",
		Help:    "Duration of AI completion calls in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichment_outcomes_total",
		Help: "Enrichment results by outcome (enriched, fallback, error).",
	}, []string{"outcome"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_cache_hits_total",
		Help: "Enrichment results served from the cache.",
	})
	reg.MustRegister(latency, outcomes, cacheHits)
	return &EnrichmentMetrics{
		latency:   latency,
		outcomes:  outcomes,
		cacheHits: cacheHits,
	}
}

// ObserveCall records the duration of one model call.
func (e *EnrichmentMetrics) ObserveCall(duration time.Duration) {
	if e == nil || e.latency == nil {
		return
	}
	e.latency.Observe(duration.Seconds())
}

// IncOutcome increments the counter for the given outcome label.
func (e *EnrichmentMetrics) IncOutcome(outcome string) {
	if e == nil || e.outcomes == nil {
		return
	}
	e.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCacheHit increments the cache-hit counter.
func (e *EnrichmentMetrics) IncCacheHit() {
	if e == nil || e.cacheHits == nil {
		return
	}
	e.cacheHits.Inc()
}
