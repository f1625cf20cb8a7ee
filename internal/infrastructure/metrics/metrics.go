// Package metrics expone contadores Prometheus de HTTP y de ventas.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

var _ billing.Metrics = (*Metrics)(nil)

// Metrics agrupa los colectores sobre un registro propio (no el global de Prometheus).
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsCount     *prometheus.CounterVec

	InvoicesCreated *prometheus.CounterVec
	PaymentChanges  *prometheus.CounterVec
}

// New registra los colectores bajo el namespace dado (p. ej. "erp").
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ErrorsCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Respuestas HTTP con error por clase",
		}, []string{"method", "route", "error_type"}),
		InvoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "invoices_created_total",
			Help:      "Facturas emitidas por empresa",
		}, []string{"company_id"}),
		PaymentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "payment_status_changes_total",
			Help:      "Cambios de estado de pago",
		}, []string{"from", "to"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCount, m.RequestDuration, m.ErrorsCount,
		m.InvoicesCreated, m.PaymentChanges,
	)
	return m
}

// Handler endpoint /metrics en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry registro subyacente (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP registra una petición terminada. route es el patrón (/api/invoices/:id), no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.RequestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	switch {
	case status >= 500:
		m.ErrorsCount.WithLabelValues(method, route, "server_error").Inc()
	case status >= 400:
		m.ErrorsCount.WithLabelValues(method, route, "client_error").Inc()
	}
}

// InvoiceCreated implementa billing.Metrics.
func (m *Metrics) InvoiceCreated(companyID string) {
	m.InvoicesCreated.WithLabelValues(companyID).Inc()
}

// PaymentUpdated implementa billing.Metrics.
func (m *Metrics) PaymentUpdated(from, to entity.InvoiceStatus) {
	m.PaymentChanges.WithLabelValues(string(from), string(to)).Inc()
}
