package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPricingMetricsNilRegistererIsSafe(t *testing.T) {
	m := NewPricingMetrics(nil)
	m.ObserveDuration("single", time.Millisecond)
	m.IncResolution("discount")
	m.IncCache("hit")
	m.IncFailure()
}

func TestPricingMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics(reg)

	m.IncResolution("quantity_break")
	m.IncResolution("")
	m.IncCache("miss")
	m.ObserveDuration("batch", 2*time.Millisecond)
	m.IncFailure()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range []string{
		"pricing_resolution_duration_seconds",
		"pricing_resolutions_total",
		"pricing_cache_requests_total",
		"pricing_resolution_failures_total",
	} {
		if !found[name] {
			t.Fatalf("metric %s not registered", name)
		}
	}
}
