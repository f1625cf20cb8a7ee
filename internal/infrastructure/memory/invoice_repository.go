package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

var (
	_ repository.InvoiceRepository         = (*InvoiceRepo)(nil)
	_ repository.InvoiceSequenceRepository = (*SequenceRepo)(nil)
	_ repository.PaymentEventRepository    = (*PaymentEventRepo)(nil)
)

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct {
	s *Store
}

// NewInvoiceRepository construye el repositorio sobre el store.
func NewInvoiceRepository(s *Store) *InvoiceRepo {
	return &InvoiceRepo{s: s}
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.LineItems = append([]entity.LineItem(nil), inv.LineItems...)
	return &cp
}

// Create persiste la factura. El número es único por empresa.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, row := range r.s.invoices.rows {
		if id == invoice.ID ||
			(row.v.CompanyID == invoice.CompanyID && row.v.InvoiceNumber == invoice.InvoiceNumber) {
			return domain.ErrDuplicate
		}
	}
	r.s.invoices.insert(invoice.ID, cloneInvoice(invoice))
	return nil
}

func (r *InvoiceRepo) scoped(scope tenancy.Scope, id string) (*row[*entity.Invoice], bool) {
	row, ok := r.s.invoices.rows[id]
	if !ok || !scope.Allows(row.v.CompanyID, row.v.IsActive) {
		return nil, false
	}
	return row, true
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *InvoiceRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.scoped(scope, id)
	if !ok {
		return nil, nil
	}
	return cloneInvoice(row.v), nil
}

// GetByIDForUpdate equivale a GetByID: RunSales ya serializa las transacciones de ventas.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, scope, id)
}

// List filtra por scope, estado y texto (número, nombre y email del cliente).
func (r *InvoiceRepo) List(ctx context.Context, scope tenancy.Scope, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.invoices.sorted(func(inv *entity.Invoice) bool {
		if !scope.Allows(inv.CompanyID, inv.IsActive) {
			return false
		}
		if f.Status != "" && inv.Status != f.Status {
			return false
		}
		return f.Search.MatchesAny(inv.InvoiceNumber, inv.CustomerName, inv.CustomerEmail)
	}, func(inv *entity.Invoice) time.Time { return inv.CreatedAt })
	items = paginate(items, f.Page)
	out := make([]*entity.Invoice, len(items))
	for i, inv := range items {
		out[i] = cloneInvoice(inv)
	}
	return out, nil
}

// Update persiste pagos, notas y vencimiento.
func (r *InvoiceRepo) Update(ctx context.Context, scope tenancy.Scope, invoice *entity.Invoice) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.scoped(scope, invoice.ID)
	if !ok {
		return domain.ErrNotFound
	}
	inv := row.v
	inv.PaidAmount = invoice.PaidAmount
	inv.RemainingAmount = invoice.RemainingAmount
	inv.Status = invoice.Status
	inv.Notes = invoice.Notes
	inv.DueDate = invoice.DueDate
	inv.UpdatedAt = invoice.UpdatedAt
	return nil
}

// SetActive borrado lógico / restauración. Los montos no cambian.
func (r *InvoiceRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.scoped(scope, id)
	if !ok {
		return domain.ErrNotFound
	}
	row.v.IsActive = active
	row.v.UpdatedAt = at
	return nil
}

// SequenceRepo contador por empresa.
type SequenceRepo struct {
	s *Store
}

// NewSequenceRepository construye el contador sobre el store.
func NewSequenceRepository(s *Store) *SequenceRepo {
	return &SequenceRepo{s: s}
}

// Next incrementa y devuelve el siguiente valor de la empresa.
func (r *SequenceRepo) Next(ctx context.Context, companyID string) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[companyID]++
	return r.s.sequences[companyID], nil
}

// PaymentEventRepo bitácora de pagos en memoria.
type PaymentEventRepo struct {
	s *Store
}

// NewPaymentEventRepository construye la bitácora sobre el store.
func NewPaymentEventRepository(s *Store) *PaymentEventRepo {
	return &PaymentEventRepo{s: s}
}

// Create agrega un evento.
func (r *PaymentEventRepo) Create(ctx context.Context, event *entity.PaymentEvent) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *event
	r.s.events = append(r.s.events, &cp)
	return nil
}

// ListByInvoice eventos de la factura en orden cronológico.
func (r *PaymentEventRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.PaymentEvent, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.PaymentEvent
	for _, ev := range r.s.events {
		if ev.InvoiceID == invoiceID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}
