package providers

import (
	"time"
	"widt/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncInboundMessages(command string)
	IncRepliesSent(outcome string)
	IncReportsGenerated(outcome string)
	IncEmailsSent(kind string, ok bool)
	ObserveSweepDuration(duration time.Duration)
	ObserveStoreDuration(op string, duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inboundMessages  *prometheus.CounterVec
	repliesSent      *prometheus.CounterVec
	reportsGenerated *prometheus.CounterVec
	emailsSent       *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	storeDuration    *prometheus.HistogramVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncInboundMessages(command string) {
	m.inboundMessages.WithLabelValues(command).Inc()
}

func (m *MetricsProvider) IncRepliesSent(outcome string) {
	m.repliesSent.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncReportsGenerated(outcome string) {
	m.reportsGenerated.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncEmailsSent(kind string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.emailsSent.WithLabelValues(kind, status).Inc()
}

func (m *MetricsProvider) ObserveSweepDuration(duration time.Duration) {
	m.sweepDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveStoreDuration(op string, duration time.Duration) {
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "widt_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "widt_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		inboundMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "widt_inbound_messages_total",
			Help: "Inbound chat messages by command",
		}, []string{"command"}),

		repliesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "widt_replies_sent_total",
			Help: "Outbound chat replies by outcome",
		}, []string{"outcome"}),

		reportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "widt_reports_generated_total",
			Help: "End-of-day reports by outcome",
		}, []string{"outcome"}),

		emailsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "widt_emails_sent_total",
			Help: "Emails dispatched by kind and status",
		}, []string{"kind", "status"}),

		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "widt_sweep_duration_seconds",
			Help:    "Full scheduler sweep duration",
			Buckets: prometheus.DefBuckets,
		}),

		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "widt_store_operation_duration_seconds",
			Help:    "Document store operation duration",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"op"}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncInboundMessages(_ string)                      {}
func (n *noopMetrics) IncRepliesSent(_ string)                          {}
func (n *noopMetrics) IncReportsGenerated(_ string)                     {}
func (n *noopMetrics) IncEmailsSent(_ string, _ bool)                   {}
func (n *noopMetrics) ObserveSweepDuration(_ time.Duration)             {}
func (n *noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
