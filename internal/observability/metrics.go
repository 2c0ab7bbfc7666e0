package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is a no-op.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	mutationsTotal   *prometheus.CounterVec
	auditFailures    *prometheus.CounterVec
	cascadeRecompute *prometheus.CounterVec
	cascadeFailures  prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hr",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "http_errors_total",
			Help:      "Total number of failed requests by error code.",
		}, []string{"route", "method", "code"}),
		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "mutations_total",
			Help:      "Total number of committed entity mutations.",
		}, []string{"kind", "action"}),
		auditFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "audit_write_failures_total",
			Help:      "Audit records that could not be written after a committed mutation.",
		}, []string{"kind", "action"}),
		cascadeRecompute: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "department_count_recomputes_total",
			Help:      "Department employee count recomputations by result.",
		}, []string{"result"}),
		cascadeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hr",
			Name:      "cascade_failures_total",
			Help:      "Cascades that failed and were queued for repair.",
		}),
	}
}

// RecordRequest counts a request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts a failed request by error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(route, method, code).Inc()
}

// RecordMutation counts a committed create, update or delete.
func (m *Metrics) RecordMutation(kind, action string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(kind, action).Inc()
}

// RecordAuditFailure counts an audit record lost after its mutation committed.
func (m *Metrics) RecordAuditFailure(kind, action string) {
	if m == nil {
		return
	}
	m.auditFailures.WithLabelValues(kind, action).Inc()
}

// RecordRecompute counts one department count recomputation.
func (m *Metrics) RecordRecompute(result string) {
	if m == nil {
		return
	}
	m.cascadeRecompute.WithLabelValues(result).Inc()
}

// RecordCascadeFailure counts a cascade that needs repair.
func (m *Metrics) RecordCascadeFailure() {
	if m == nil {
		return
	}
	m.cascadeFailures.Inc()
}
