package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de pago de una factura.
type InvoiceStatus string

// Estados de pago. Solo ApplyPayment mueve una factura entre ellos.
const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

// ParseInvoiceStatus valida un estado recibido como texto.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	switch st := InvoiceStatus(s); st {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return st, true
	}
	return "", false
}

// LineItem línea de factura. Total = cantidad×precio + impuesto.
type LineItem struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	Total       decimal.Decimal
}

// Invoice representa una factura de venta. CustomerName y CustomerEmail son una copia
// del cliente al momento de crearla.
type Invoice struct {
	ID              string
	InvoiceNumber   string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CompanyID       string
	LineItems       []LineItem
	Subtotal        decimal.Decimal
	TotalTax        decimal.Decimal
	GrandTotal      decimal.Decimal
	Status          InvoiceStatus
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	IssueDate       time.Time
	DueDate         time.Time
	Notes           string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
}

// PaymentEvent registro de auditoría de cada cambio del monto pagado.
type PaymentEvent struct {
	ID             string
	InvoiceID      string
	CompanyID      string
	PreviousPaid   decimal.Decimal
	NewPaid        decimal.Decimal
	PreviousStatus InvoiceStatus
	NewStatus      InvoiceStatus
	ChangedBy      string
	ChangedAt      time.Time
}
