package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/policy"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/sales"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

// InvoiceUseCase ciclo de vida de las facturas de venta: listado, emisión, pagos y borrado lógico.
type InvoiceUseCase struct {
	txRunner    SalesTxRunner
	invoiceRepo repository.InvoiceRepository
	contactRepo repository.ContactRepository
	eventRepo   repository.PaymentEventRepository
	metrics     Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. metrics puede ser nil.
func NewInvoiceUseCase(
	txRunner SalesTxRunner,
	invoiceRepo repository.InvoiceRepository,
	contactRepo repository.ContactRepository,
	eventRepo repository.PaymentEventRepository,
	metrics Metrics,
	log *logger.Logger,
) *InvoiceUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		contactRepo: contactRepo,
		eventRepo:   eventRepo,
		metrics:     metrics,
		log:         log.Named("billing"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

func authorize(p entity.Principal, opts ...tenancy.Option) (tenancy.Scope, error) {
	if err := policy.Evaluate(p, entity.ModuleSales).Err(); err != nil {
		return tenancy.Scope{}, err
	}
	return tenancy.Build(p, opts...)
}

// List facturas activas visibles para el principal, más recientes primero.
// Un estado desconocido en el filtro se ignora.
func (uc *InvoiceUseCase) List(ctx context.Context, p entity.Principal, in dto.InvoiceFilter) ([]dto.InvoiceResponse, error) {
	scope, err := authorize(p)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	filter := repository.InvoiceFilter{
		Search: tenancy.NewSearch(in.Search),
		Page:   repository.Page{Limit: in.Limit, Offset: in.Offset},
	}
	if st, ok := entity.ParseInvoiceStatus(in.Status); ok {
		filter.Status = st
	}
	list, err := uc.invoiceRepo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *ToInvoiceResponse(inv))
	}
	return out, nil
}

// Get factura por ID. Inexistente, inactiva o de otra empresa es domain.ErrNotFound.
func (uc *InvoiceUseCase) Get(ctx context.Context, p entity.Principal, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, p entity.Principal, id string) (*entity.Invoice, error) {
	scope, err := authorize(p)
	if err != nil {
		return nil, err
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// Create emite una factura: valida líneas, resuelve el cliente dentro de la empresa,
// asigna el siguiente número de la empresa y persiste todo en una transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateInvoiceRequest) (*dto.CreateInvoiceResponse, error) {
	scope, err := authorize(p, tenancy.WithTargetCompany(in.CompanyID))
	if err != nil {
		return nil, err
	}
	companyID, err := scope.OwnerCompany()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CustomerID) == "" || len(in.LineItems) == 0 {
		return nil, domain.Invalid("debe seleccionar un cliente y agregar líneas a la factura")
	}
	dueDate, err := dto.ParseDate("dueDate", in.DueDate)
	if err != nil {
		return nil, err
	}
	items := make([]sales.LineItemInput, len(in.LineItems))
	for i, li := range in.LineItems {
		items[i] = sales.LineItemInput{
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxPercent:  li.TaxPercent,
		}
	}
	// Validar antes de consumir un número de la secuencia.
	if _, err := sales.ComputeTotals(items); err != nil {
		return nil, err
	}

	customer, err := uc.contactRepo.GetByID(ctx, scope, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || !customer.IsCustomer() {
		return nil, domain.Invalid("cliente no encontrado")
	}

	now := uc.now()
	var inv *entity.Invoice
	err = uc.txRunner.RunSales(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		sequenceRepo repository.InvoiceSequenceRepository,
		_ repository.PaymentEventRepository,
	) error {
		seq, err := sequenceRepo.Next(ctx, companyID)
		if err != nil {
			return fmt.Errorf("numeración: %w", err)
		}
		inv, err = sales.NewInvoice(sales.NewInvoiceParams{
			Number:    sales.FormatInvoiceNumber(seq),
			CompanyID: companyID,
			Customer:  customer,
			Items:     items,
			DueDate:   dueDate,
			Notes:     in.Notes,
			CreatedBy: p.UserID,
			Now:       now,
		})
		if err != nil {
			return err
		}
		inv.ID = uuid.New().String()
		return invoiceRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.InvoiceCreated(companyID)
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("company_id", companyID).
		Str("user_id", p.UserID).
		Msg("factura emitida")
	return &dto.CreateInvoiceResponse{ID: inv.ID, InvoiceNumber: inv.InvoiceNumber}, nil
}

// Update aplica notas, vencimiento y monto pagado. Solo si llega paidAmount se
// recalculan saldo y estado; cada cambio de pago queda en la bitácora.
func (uc *InvoiceUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	scope, err := authorize(p)
	if err != nil {
		return nil, err
	}
	var dueDate time.Time
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		if dueDate, err = dto.ParseDate("dueDate", *in.DueDate); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	var (
		inv     *entity.Invoice
		payment *sales.PaymentUpdate
	)
	err = uc.txRunner.RunSales(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.InvoiceSequenceRepository,
		eventRepo repository.PaymentEventRepository,
	) error {
		// Lectura con lock: un PUT concurrente no puede pisar el pago confirmado por otro.
		inv, err = invoiceRepo.GetByIDForUpdate(ctx, scope, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if in.Notes != nil {
			inv.Notes = strings.TrimSpace(*in.Notes)
		}
		if !dueDate.IsZero() {
			inv.DueDate = dueDate
		}
		if in.PaidAmount != nil {
			u := sales.ApplyPayment(inv, in.PaidAmount.Decimal())
			payment = &u
		}
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(ctx, scope, inv); err != nil {
			return err
		}
		if payment == nil || !payment.Changed() {
			return nil
		}
		ev := payment.Event(inv, p.UserID, now)
		ev.ID = uuid.New().String()
		return eventRepo.Create(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	if payment != nil && payment.Changed() {
		uc.metrics.PaymentUpdated(payment.PreviousStatus, payment.Status)
		if payment.Regressed() {
			uc.log.Warn().
				Str("invoice_id", inv.ID).
				Str("from", string(payment.PreviousStatus)).
				Str("to", string(payment.Status)).
				Str("user_id", p.UserID).
				Msg("estado de pago retrocede")
		}
	}
	return ToInvoiceResponse(inv), nil
}

// Delete borrado lógico: la factura deja de listarse y consultarse pero conserva
// sus montos y su número. Borrar una factura ya inactiva no es error.
func (uc *InvoiceUseCase) Delete(ctx context.Context, p entity.Principal, id string) error {
	scope, err := authorize(p, tenancy.IncludeInactive())
	if err != nil {
		return err
	}
	return uc.invoiceRepo.SetActive(ctx, scope, id, false, uc.now())
}

// Payments bitácora de pagos de una factura visible para el principal.
func (uc *InvoiceUseCase) Payments(ctx context.Context, p entity.Principal, id string) ([]dto.PaymentEventResponse, error) {
	inv, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.PaymentEventResponse{
			ID:             ev.ID,
			PreviousPaid:   ev.PreviousPaid,
			NewPaid:        ev.NewPaid,
			PreviousStatus: string(ev.PreviousStatus),
			NewStatus:      string(ev.NewStatus),
			ChangedBy:      ev.ChangedBy,
			ChangedAt:      ev.ChangedAt,
		})
	}
	return out, nil
}

// ToInvoiceResponse mapea la entidad al DTO de salida.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	items := make([]dto.LineItemResponse, len(inv.LineItems))
	for i, li := range inv.LineItems {
		items[i] = dto.LineItemResponse{
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxPercent:  li.TaxPercent,
			Total:       li.Total,
		}
	}
	return &dto.InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		CustomerEmail:   inv.CustomerEmail,
		CompanyID:       inv.CompanyID,
		LineItems:       items,
		Subtotal:        inv.Subtotal,
		TotalTax:        inv.TotalTax,
		GrandTotal:      inv.GrandTotal,
		Status:          string(inv.Status),
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Notes:           inv.Notes,
		IsActive:        inv.IsActive,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		CreatedBy:       inv.CreatedBy,
	}
}
