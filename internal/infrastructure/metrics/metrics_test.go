package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/infrastructure/metrics"
)

func TestObserveHTTP(t *testing.T) {
	m := metrics.New("erp")

	m.ObserveHTTP("GET", "/api/invoices", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "/api/invoices", 404, time.Millisecond)
	m.ObserveHTTP("POST", "/api/invoices", 503, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCount.WithLabelValues("GET", "/api/invoices", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("GET", "/api/invoices", "client_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("POST", "/api/invoices", "server_error")))
}

func TestSalesCounters(t *testing.T) {
	m := metrics.New("erp")

	m.InvoiceCreated("A")
	m.InvoiceCreated("A")
	m.PaymentUpdated(entity.InvoiceStatusUnpaid, entity.InvoiceStatusPaid)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvoicesCreated.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentChanges.WithLabelValues("unpaid", "paid")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := metrics.New("erp")
	m.InvoiceCreated("A")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `erp_sales_invoices_created_total{company_id="A"} 1`))
}
