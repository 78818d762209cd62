package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors used by the service.
type Metrics struct {
	registry *prometheus.Registry

	// SessionsActive tracks currently registered link sessions by mode.
	SessionsActive *prometheus.GaugeVec

	// PairingCodesIssued counts successfully issued pairing codes.
	PairingCodesIssued prometheus.Counter

	// QRCodesIssued counts QR payloads delivered to clients.
	QRCodesIssued prometheus.Counter

	// SessionsCleaned counts removed session directories by reason.
	SessionsCleaned *prometheus.CounterVec

	// LinkTimeouts counts sessions that expired before connecting.
	LinkTimeouts prometheus.Counter

	// LinkFailures counts sessions that ended in failure.
	LinkFailures prometheus.Counter

	// RequestDuration observes HTTP handler latency.
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics with all collectors registered on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		SessionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ghostlink",
			Name:      "sessions_active",
			Help:      "Number of link sessions currently registered.",
		}, []string{"mode"}),
		PairingCodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghostlink",
			Name:      "pairing_codes_issued_total",
			Help:      "Total pairing codes issued.",
		}),
		QRCodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghostlink",
			Name:      "qr_codes_issued_total",
			Help:      "Total QR payloads delivered.",
		}),
		SessionsCleaned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghostlink",
			Name:      "sessions_cleaned_total",
			Help:      "Total session directories removed, by reason.",
		}, []string{"reason"}),
		LinkTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghostlink",
			Name:      "link_timeouts_total",
			Help:      "Total sessions that expired before a device connected.",
		}),
		LinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghostlink",
			Name:      "link_failures_total",
			Help:      "Total sessions that ended in failure.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghostlink",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.SessionsActive,
		m.PairingCodesIssued,
		m.QRCodesIssued,
		m.SessionsCleaned,
		m.LinkTimeouts,
		m.LinkFailures,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns an http.Handler serving the registry in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
