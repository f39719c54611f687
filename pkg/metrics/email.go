package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EmailMetrics counts outbound mail outcomes by kind.
type EmailMetrics struct {
	sent    *prometheus.CounterVec
	failed  *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

// NewEmailMetrics registers the email metrics on the provided registerer.
func NewEmailMetrics(reg prometheus.Registerer) *EmailMetrics {
	if reg == nil {
		return &EmailMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_sent",
		Help: "Emails delivered to the SMTP server.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_failed",
		Help: "Emails that could not be delivered.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_dropped",
		Help: "Emails dropped because the async queue was full.",
	}, []string{"kind"})
	reg.MustRegister(sent, failed, dropped)
	return &EmailMetrics{
		sent:    sent,
		failed:  failed,
		dropped: dropped,
	}
}

// IncSent increments the delivered counter for the kind.
func (e *EmailMetrics) IncSent(kind string) {
	if e == nil || e.sent == nil {
		return
	}
	e.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailed increments the failed counter for the kind.
func (e *EmailMetrics) IncFailed(kind string) {
	if e == nil || e.failed == nil {
		return
	}
	e.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDropped increments the dropped counter for the kind.
func (e *EmailMetrics) IncDropped(kind string) {
	if e == nil || e.dropped == nil {
		return
	}
	e.dropped.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
