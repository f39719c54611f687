package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SummaryMetrics records summary generation outcomes. The source label is
// "ai" when the model produced the text and "template" when the deterministic
// fallback did.
type SummaryMetrics struct {
	generated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewSummaryMetrics registers the summary metrics on the provided registerer.
func NewSummaryMetrics(reg prometheus.Registerer) *SummaryMetrics {
	if reg == nil {
		return &SummaryMetrics{}
	}
	generated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summary_generated",
		Help: "Summaries generated, labelled by text source.",
	}, []string{"source"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "summary_generation_seconds",
		Help:    "Time spent producing summary text.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	reg.MustRegister(generated, duration)
	return &SummaryMetrics{
		generated: generated,
		duration:  duration,
	}
}

// IncGenerated increments the generation counter for the source.
func (s *SummaryMetrics) IncGenerated(source string) {
	if s == nil || s.generated == nil {
		return
	}
	s.generated.WithLabelValues(normalizeLabel(source)).Inc()
}

// ObserveDuration records how long generation took for the source.
func (s *SummaryMetrics) ObserveDuration(source string, d time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(source)).Observe(d.Seconds())
}
