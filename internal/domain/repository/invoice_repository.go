package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// InvoiceFilter filtros del listado de facturas. La búsqueda cubre
// invoiceNumber, customerName y customerEmail.
type InvoiceFilter struct {
	Status entity.InvoiceStatus
	Search tenancy.Search
	Page   Page
}

// InvoiceRepository puerto de persistencia para Invoice (con sus líneas).
type InvoiceRepository interface {
	// Create inserta factura y líneas. Número repetido en la empresa → domain.ErrDuplicate.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error)
	// GetByIDForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	// Solo tiene sentido dentro de RunSales.
	GetByIDForUpdate(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error)
	// List ordena por createdAt descendente.
	List(ctx context.Context, scope tenancy.Scope, filter InvoiceFilter) ([]*entity.Invoice, error)
	// Update persiste los campos mutables (pagos, notas, vencimiento). Las líneas no cambian.
	Update(ctx context.Context, scope tenancy.Scope, invoice *entity.Invoice) error
	SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error
}

// InvoiceSequenceRepository contador atómico por empresa para la numeración.
type InvoiceSequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero es 1).
	Next(ctx context.Context, companyID string) (int64, error)
}

// PaymentEventRepository bitácora de cambios de pago.
type PaymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
	// ListByInvoice ordena por changedAt ascendente.
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.PaymentEvent, error)
}
