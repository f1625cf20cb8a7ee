package billing

import (
	"context"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción con los repos de ventas.
// La numeración, la factura y la bitácora de pagos se confirman o se descartan juntas.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		sequenceRepo repository.InvoiceSequenceRepository,
		eventRepo repository.PaymentEventRepository,
	) error) error
}

// InvoicePDFGenerator genera la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, company *entity.Company) ([]byte, error)
}

// XMLDocument factura exportada en XML canónico y su digest (base64 SHA-256).
type XMLDocument struct {
	Content []byte
	Digest  string
}

// InvoiceXMLExporter exporta una factura como documento XML.
type InvoiceXMLExporter interface {
	ExportInvoice(ctx context.Context, inv *entity.Invoice, company *entity.Company) (*XMLDocument, error)
}

// Metrics contadores de negocio de ventas.
type Metrics interface {
	InvoiceCreated(companyID string)
	PaymentUpdated(from, to entity.InvoiceStatus)
}

type noopMetrics struct{}

func (noopMetrics) InvoiceCreated(string)                                     {}
func (noopMetrics) PaymentUpdated(entity.InvoiceStatus, entity.InvoiceStatus) {}
