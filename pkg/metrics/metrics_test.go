package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEmailMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	email := NewEmailMetrics(reg)
	email.IncSent("invitation")
	email.IncFailed("reminder")
	email.IncDropped("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "email_sent", "kind", "invitation"); err != nil {
		t.Fatalf("fetch sent: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sent=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "email_failed", "kind", "reminder"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "email_dropped", "kind", "unknown"); err != nil {
		t.Fatalf("fetch dropped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dropped=1 under unknown label, got %f", got)
	}
}

func TestEmailMetricsNilSafe(t *testing.T) {
	var email *EmailMetrics
	email.IncSent("invitation")

	unregistered := NewEmailMetrics(nil)
	unregistered.IncFailed("reminder")
}

func TestSummaryMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	summary := NewSummaryMetrics(reg)
	summary.IncGenerated("ai")
	summary.IncGenerated("template")
	summary.ObserveDuration("ai", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "summary_generated", "source", "ai"); err != nil {
		t.Fatalf("fetch ai: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ai=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "summary_generated", "source", "template"); err != nil {
		t.Fatalf("fetch template: %v", err)
	} else if got != 1 {
		t.Fatalf("expected template=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "summary_generation_seconds", "source", "ai"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
