package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records resolution engine activity.
type PricingMetrics struct {
	duration    *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	failures    prometheus.Counter
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_resolution_duration_seconds",
		Help:    "Duration of price resolutions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_resolutions_total",
		Help: "Price resolutions by applied rule type.",
	}, []string{"applied"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_cache_requests_total",
		Help: "Resolution cache lookups by outcome.",
	}, []string{"outcome"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_resolution_failures_total",
		Help: "Price resolutions that failed before producing a result.",
	})
	reg.MustRegister(duration, resolutions, cacheHits, failures)
	return &PricingMetrics{
		duration:    duration,
		resolutions: resolutions,
		cacheHits:   cacheHits,
		failures:    failures,
	}
}

// ObserveDuration records how long a resolution took. Mode is "single" or "batch".
func (p *PricingMetrics) ObserveDuration(mode string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncResolution counts one resolution by the rule type that won (or "none").
func (p *PricingMetrics) IncResolution(applied string) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(normalizeLabel(applied)).Inc()
}

// IncCache counts a cache lookup outcome: "hit", "miss", or "error".
func (p *PricingMetrics) IncCache(outcome string) {
	if p == nil || p.cacheHits == nil {
		return
	}
	p.cacheHits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncFailure counts a resolution that errored out.
func (p *PricingMetrics) IncFailure() {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
