package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/reversesingularity/phobetron-orbital/model"
)

func TestRecordPropagationCountsAndDurations(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}

	collector.RecordPropagation(model.KindPlanet, "ok", 3*time.Microsecond)
	collector.RecordPropagation(model.KindPlanet, "ok", 5*time.Microsecond)
	collector.RecordPropagation(model.KindComet, "non_convergence", time.Microsecond)

	if got := testutil.ToFloat64(collector.Propagations.WithLabelValues("planet", "ok")); got != 2 {
		t.Fatalf("ephemeris_propagations_total{planet,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Propagations.WithLabelValues("comet", "non_convergence")); got != 1 {
		t.Fatalf("ephemeris_propagations_total{comet,non_convergence} = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "ephemeris_propagation_duration_seconds", map[string]string{
		"kind": "planet",
	}); count != 2 {
		t.Fatalf("duration sample_count = %d, want 2", count)
	}
}

func TestRecordPropagationSkipsZeroDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}

	// A failed call carries no useful latency; it is counted but not
	// observed.
	collector.RecordPropagation(model.KindMoon, "parent_unavailable", 0)

	if got := testutil.ToFloat64(collector.Propagations.WithLabelValues("moon", "parent_unavailable")); got != 1 {
		t.Fatalf("count = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "ephemeris_propagation_duration_seconds", map[string]string{
		"kind": "moon",
	}); count != 0 {
		t.Fatalf("duration sample_count = %d, want 0", count)
	}
}

func TestMetricsHandlerExposesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}
	collector.SetEpoch(2451545.0)
	collector.SetBodyCount(13)
	collector.RecordPropagation(model.KindAsteroid, "ok", time.Microsecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"ephemeris_propagations_total",
		"ephemeris_propagation_duration_seconds",
		"ephemeris_epoch_jd",
		"ephemeris_registry_bodies",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "2.451545e+06") || !strings.Contains(body, "13") {
		t.Fatalf("/metrics output missing gauge values: %s", body)
	}
}

func TestNewPropagationCollectorTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}
	second, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector (again): %v", err)
	}

	first.RecordPropagation(model.KindPlanet, "ok", time.Microsecond)
	second.RecordPropagation(model.KindPlanet, "ok", time.Microsecond)

	if got := testutil.ToFloat64(first.Propagations.WithLabelValues("planet", "ok")); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
