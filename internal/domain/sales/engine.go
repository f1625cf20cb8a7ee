// Package sales concentra el cálculo financiero de las facturas: totales por línea,
// numeración y transición de estados de pago. No depende de almacenamiento ni de HTTP.
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

const invoiceNumberPrefix = "INV-"

// LineItemInput línea tal como la envía el cliente, antes de calcular su total.
type LineItemInput struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
}

// Totals resultado de ComputeTotals. Items conserva el orden de entrada.
type Totals struct {
	Items      []entity.LineItem
	Subtotal   decimal.Decimal
	TotalTax   decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeTotals valida las líneas y calcula subtotal, impuesto y total.
// Por línea: subtotal = q×p, impuesto = subtotal×tax/100, total = subtotal + impuesto.
// Los montos son exactos: no se redondea ni por línea ni en los totales.
func ComputeTotals(items []LineItemInput) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, domain.Invalid("la factura debe tener al menos una línea")
	}
	out := Totals{
		Items:    make([]entity.LineItem, 0, len(items)),
		Subtotal: decimal.Zero,
		TotalTax: decimal.Zero,
	}
	for i, it := range items {
		name := strings.TrimSpace(it.ProductName)
		switch {
		case name == "":
			return Totals{}, domain.Invalid("línea %d: el producto es requerido", i+1)
		case !it.Quantity.IsPositive():
			return Totals{}, domain.Invalid("línea %d: la cantidad debe ser mayor que cero", i+1)
		case it.UnitPrice.IsNegative():
			return Totals{}, domain.Invalid("línea %d: el precio unitario no puede ser negativo", i+1)
		case it.TaxPercent.IsNegative():
			return Totals{}, domain.Invalid("línea %d: el impuesto no puede ser negativo", i+1)
		}

		lineSubtotal := it.Quantity.Mul(it.UnitPrice)
		// Shift(-2) divide por 100 sin perder dígitos, a diferencia de Div.
		lineTax := lineSubtotal.Mul(it.TaxPercent).Shift(-2)
		out.Items = append(out.Items, entity.LineItem{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxPercent:  it.TaxPercent,
			Total:       lineSubtotal.Add(lineTax),
		})
		out.Subtotal = out.Subtotal.Add(lineSubtotal)
		out.TotalTax = out.TotalTax.Add(lineTax)
	}
	out.GrandTotal = out.Subtotal.Add(out.TotalTax)
	return out, nil
}

// FormatInvoiceNumber "INV-" + secuencia con 6 dígitos (crece si supera 999999).
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", invoiceNumberPrefix, seq)
}

// NewInvoiceParams datos necesarios para emitir una factura.
type NewInvoiceParams struct {
	Number    string
	CompanyID string
	Customer  *entity.Contact
	Items     []LineItemInput
	DueDate   time.Time
	Notes     string
	CreatedBy string
	Now       time.Time
}

// NewInvoice construye una factura nueva: sin pagos, pendiente por el total y activa.
func NewInvoice(p NewInvoiceParams) (*entity.Invoice, error) {
	if p.Customer == nil {
		return nil, domain.Invalid("cliente no encontrado")
	}
	totals, err := ComputeTotals(p.Items)
	if err != nil {
		return nil, err
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &entity.Invoice{
		InvoiceNumber:   p.Number,
		CustomerID:      p.Customer.ID,
		CustomerName:    p.Customer.Name,
		CustomerEmail:   p.Customer.Email,
		CompanyID:       p.CompanyID,
		LineItems:       totals.Items,
		Subtotal:        totals.Subtotal,
		TotalTax:        totals.TotalTax,
		GrandTotal:      totals.GrandTotal,
		Status:          entity.InvoiceStatusUnpaid,
		PaidAmount:      decimal.Zero,
		RemainingAmount: totals.GrandTotal,
		IssueDate:       now,
		DueDate:         p.DueDate,
		Notes:           strings.TrimSpace(p.Notes),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       p.CreatedBy,
	}, nil
}

// ResolveStatus estado de pago en función del monto pagado y el total.
func ResolveStatus(paid, grandTotal decimal.Decimal) entity.InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(grandTotal):
		return entity.InvoiceStatusPaid
	case paid.IsPositive():
		return entity.InvoiceStatusPartiallyPaid
	default:
		return entity.InvoiceStatusUnpaid
	}
}

// PaymentUpdate describe el cambio aplicado por ApplyPayment.
type PaymentUpdate struct {
	PreviousPaid    decimal.Decimal
	PreviousStatus  entity.InvoiceStatus
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          entity.InvoiceStatus
}

// Regressed informa si el estado retrocede (p. ej. paid → partially_paid).
func (u PaymentUpdate) Regressed() bool {
	return statusRank(u.Status) < statusRank(u.PreviousStatus)
}

// Changed informa si el monto pagado o el estado cambiaron.
func (u PaymentUpdate) Changed() bool {
	return !u.PaidAmount.Equal(u.PreviousPaid) || u.Status != u.PreviousStatus
}

// Event registro de auditoría del cambio.
func (u PaymentUpdate) Event(inv *entity.Invoice, changedBy string, at time.Time) entity.PaymentEvent {
	return entity.PaymentEvent{
		InvoiceID:      inv.ID,
		CompanyID:      inv.CompanyID,
		PreviousPaid:   u.PreviousPaid,
		NewPaid:        u.PaidAmount,
		PreviousStatus: u.PreviousStatus,
		NewStatus:      u.Status,
		ChangedBy:      changedBy,
		ChangedAt:      at,
	}
}

// ApplyPayment fija el monto pagado acumulado de la factura y recalcula saldo y estado.
// Un monto negativo se toma como 0. El saldo no se limita: negativo indica sobrepago.
func ApplyPayment(inv *entity.Invoice, paid decimal.Decimal) PaymentUpdate {
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	u := PaymentUpdate{
		PreviousPaid:    inv.PaidAmount,
		PreviousStatus:  inv.Status,
		PaidAmount:      paid,
		RemainingAmount: inv.GrandTotal.Sub(paid),
		Status:          ResolveStatus(paid, inv.GrandTotal),
	}
	inv.PaidAmount = u.PaidAmount
	inv.RemainingAmount = u.RemainingAmount
	inv.Status = u.Status
	return u
}

func statusRank(s entity.InvoiceStatus) int {
	switch s {
	case entity.InvoiceStatusPaid:
		return 2
	case entity.InvoiceStatusPartiallyPaid:
		return 1
	default:
		return 0
	}
}
