package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
	MailSentTotal   prometheus.Counter
}

// NewMetrics registers collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "deployments_http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"path", "method", "status"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deployments_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		ErrorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "deployments_http_errors_total",
			Help: "Total number of error responses by error code",
		}, []string{"path", "method", "code"}),
		MailSentTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "deployments_mail_sent_total",
			Help: "Total number of notification mails sent",
		}),
	}
}

// RecordRequest increments request counters and observes the duration.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordMailSent increments the outbound mail counter.
func (m *Metrics) RecordMailSent() {
	if m == nil {
		return
	}
	m.MailSentTotal.Inc()
}
