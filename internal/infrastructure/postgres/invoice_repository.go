package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
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

// ── Facturas ──────────────────────────────────────────────────────────────────

// InvoiceRepo implementación de InvoiceRepository con pgx. Las líneas viven en invoice_line_items.
type InvoiceRepo struct {
	q       Querier
	timeout time.Duration
}

// NewInvoiceRepository construye el repositorio (pool o tx).
func NewInvoiceRepository(q Querier, timeout time.Duration) *InvoiceRepo {
	return &InvoiceRepo{q: q, timeout: timeout}
}

const invoiceColumns = `id, invoice_number, customer_id, customer_name, customer_email, company_id,
	subtotal, total_tax, grand_total, status, paid_amount, remaining_amount,
	issue_date, due_date, notes, is_active, created_at, updated_at, created_by`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv    entity.Invoice
		status string
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName, &inv.CustomerEmail, &inv.CompanyID,
		&inv.Subtotal, &inv.TotalTax, &inv.GrandTotal, &status, &inv.PaidAmount, &inv.RemainingAmount,
		&inv.IssueDate, &inv.DueDate, &inv.Notes, &inv.IsActive, &inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}

// Create inserta la cabecera y sus líneas. Debe ejecutarse dentro de RunSales.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO invoices (id, invoice_number, customer_id, customer_name, customer_email, company_id,
		                      subtotal, total_tax, grand_total, status, paid_amount, remaining_amount,
		                      issue_date, due_date, notes, is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.CustomerID, inv.CustomerName, inv.CustomerEmail, inv.CompanyID,
		inv.Subtotal, inv.TotalTax, inv.GrandTotal, string(inv.Status), inv.PaidAmount, inv.RemainingAmount,
		inv.IssueDate, inv.DueDate, inv.Notes, inv.IsActive, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy,
	)
	if err != nil {
		return storeErr("insert invoice", err)
	}

	lineQuery := `
		INSERT INTO invoice_line_items (invoice_id, position, product_name, quantity, unit_price, tax_percent, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, li := range inv.LineItems {
		_, err := r.q.Exec(ctx, lineQuery,
			inv.ID, i+1, li.ProductName, li.Quantity, li.UnitPrice, li.TaxPercent, li.Total,
		)
		if err != nil {
			return storeErr("insert invoice line", err)
		}
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *InvoiceRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	return r.get(ctx, scope, id, false)
}

// GetByIDForUpdate toma un lock de fila (FOR UPDATE): dos actualizaciones de la
// misma factura se serializan y la segunda lee lo que confirmó la primera.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	return r.get(ctx, scope, id, true)
}

func (r *InvoiceRepo) get(ctx context.Context, scope tenancy.Scope, id string, lock bool) (*entity.Invoice, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query, args := selectInvoice(scope, id, lock)
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("get invoice", err)
	}
	if err := r.attachLines(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

func selectInvoice(scope tenancy.Scope, id string, lock bool) (string, []any) {
	var w where
	w.add("id = " + w.arg(id))
	w.scope(scope)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.String()
	if lock {
		query += ` FOR UPDATE`
	}
	return query, w.args
}

// List filtra por scope, estado y texto (número, nombre y email del cliente).
func (r *InvoiceRepo) List(ctx context.Context, scope tenancy.Scope, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	w.scope(scope)
	if f.Status != "" {
		w.add("status = " + w.arg(string(f.Status)))
	}
	w.search(f.Search, "invoice_number", "customer_name", "customer_email")
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.String() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, storeErr("list invoices", err)
	}
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, storeErr("scan invoice", err)
		}
		list = append(list, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("list invoices", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga las líneas de varias facturas en una sola consulta.
func (r *InvoiceRepo) attachLines(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, len(invoices))
	for i, inv := range invoices {
		byID[inv.ID] = inv
		ids[i] = inv.ID
		inv.LineItems = []entity.LineItem{}
	}
	query := `
		SELECT invoice_id, product_name, quantity, unit_price, tax_percent, total
		FROM invoice_line_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return storeErr("list invoice lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			invoiceID string
			li        entity.LineItem
		)
		if err := rows.Scan(&invoiceID, &li.ProductName, &li.Quantity, &li.UnitPrice, &li.TaxPercent, &li.Total); err != nil {
			return storeErr("scan invoice line", err)
		}
		if inv, ok := byID[invoiceID]; ok {
			inv.LineItems = append(inv.LineItems, li)
		}
	}
	return storeErr("list invoice lines", rows.Err())
}

// Update persiste pagos, notas y vencimiento. Las líneas y los totales no cambian.
func (r *InvoiceRepo) Update(ctx context.Context, scope tenancy.Scope, inv *entity.Invoice) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	set := `status = ` + w.arg(string(inv.Status)) +
		`, paid_amount = ` + w.arg(inv.PaidAmount) +
		`, remaining_amount = ` + w.arg(inv.RemainingAmount) +
		`, due_date = ` + w.arg(inv.DueDate) +
		`, notes = ` + w.arg(inv.Notes) +
		`, updated_at = ` + w.arg(inv.UpdatedAt)
	w.add("id = " + w.arg(inv.ID))
	w.scope(scope)
	tag, err := r.q.Exec(ctx, `UPDATE invoices SET `+set+w.String(), w.args...)
	if err != nil {
		return storeErr("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive borrado lógico / restauración.
func (r *InvoiceRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
	return setActive(ctx, r.q, r.timeout, "invoices", scope, id, active, at)
}

// ── Numeración ────────────────────────────────────────────────────────────────

// SequenceRepo contador por empresa en invoice_sequences.
type SequenceRepo struct {
	q       Querier
	timeout time.Duration
}

// NewSequenceRepository construye el repositorio. Dentro de una tx el bloqueo de fila
// serializa emisiones concurrentes de la misma empresa.
func NewSequenceRepository(q Querier, timeout time.Duration) *SequenceRepo {
	return &SequenceRepo{q: q, timeout: timeout}
}

// Next incrementa y devuelve el contador (el primero es 1).
func (r *SequenceRepo) Next(ctx context.Context, companyID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO invoice_sequences (company_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (company_id) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`
	var next int64
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&next); err != nil {
		return 0, storeErr("next invoice number", err)
	}
	return next, nil
}

// ── Bitácora de pagos ─────────────────────────────────────────────────────────

// PaymentEventRepo eventos de cambio de pago.
type PaymentEventRepo struct {
	q       Querier
	timeout time.Duration
}

// NewPaymentEventRepository construye el repositorio.
func NewPaymentEventRepository(q Querier, timeout time.Duration) *PaymentEventRepo {
	return &PaymentEventRepo{q: q, timeout: timeout}
}

// Create registra un evento.
func (r *PaymentEventRepo) Create(ctx context.Context, e *entity.PaymentEvent) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO payment_events (id, invoice_id, company_id, previous_paid, new_paid,
		                            previous_status, new_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.InvoiceID, e.CompanyID, e.PreviousPaid, e.NewPaid,
		string(e.PreviousStatus), string(e.NewStatus), e.ChangedBy, e.ChangedAt,
	)
	return storeErr("insert payment event", err)
}

// ListByInvoice eventos de una factura en orden cronológico.
func (r *PaymentEventRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.PaymentEvent, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		SELECT id, invoice_id, company_id, previous_paid, new_paid, previous_status, new_status, changed_by, changed_at
		FROM payment_events
		WHERE invoice_id = $1
		ORDER BY changed_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, storeErr("list payment events", err)
	}
	defer rows.Close()

	var list []*entity.PaymentEvent
	for rows.Next() {
		var (
			e            entity.PaymentEvent
			prev, status string
		)
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.CompanyID, &e.PreviousPaid, &e.NewPaid,
			&prev, &status, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, storeErr("scan payment event", err)
		}
		e.PreviousStatus = entity.InvoiceStatus(prev)
		e.NewStatus = entity.InvoiceStatus(status)
		list = append(list, &e)
	}
	return list, storeErr("list payment events", rows.Err())
}
