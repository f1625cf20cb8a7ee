package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea de factura tal como llega del cliente.
type LineItemRequest struct {
	ProductName string          `json:"productName" validate:"required,max=200"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
}

// CreateInvoiceRequest body para POST /api/sales.
// CompanyID solo lo usa un super-admin.
type CreateInvoiceRequest struct {
	CustomerID string            `json:"customerId" validate:"required"`
	LineItems  []LineItemRequest `json:"lineItems" validate:"required,min=1,dive"`
	DueDate    string            `json:"dueDate" validate:"required"`
	Notes      string            `json:"notes" validate:"max=2000"`
	CompanyID  string            `json:"companyId"`
}

// CreateInvoiceResponse identificador y número asignado.
type CreateInvoiceResponse struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// UpdateInvoiceRequest body para PUT /api/sales/:id. Solo estos campos son reconocidos;
// los pagos se recalculan únicamente si llega paidAmount.
type UpdateInvoiceRequest struct {
	PaidAmount *LenientAmount `json:"paidAmount"`
	Notes      *string        `json:"notes" validate:"omitempty,max=2000"`
	DueDate    *string        `json:"dueDate"`
}

// InvoiceFilter query de GET /api/sales.
type InvoiceFilter struct {
	Status string `query:"status"`
	Search string `query:"search"`
	PageRequest
}

// LineItemResponse línea con su total calculado.
type LineItemResponse struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceResponse factura completa.
type InvoiceResponse struct {
	ID              string             `json:"id"`
	InvoiceNumber   string             `json:"invoiceNumber"`
	CustomerID      string             `json:"customerId"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CompanyID       string             `json:"companyId"`
	LineItems       []LineItemResponse `json:"lineItems"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TotalTax        decimal.Decimal    `json:"totalTax"`
	GrandTotal      decimal.Decimal    `json:"grandTotal"`
	Status          string             `json:"status"`
	PaidAmount      decimal.Decimal    `json:"paidAmount"`
	RemainingAmount decimal.Decimal    `json:"remainingAmount"`
	IssueDate       time.Time          `json:"issueDate"`
	DueDate         time.Time          `json:"dueDate"`
	Notes           string             `json:"notes"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	CreatedBy       string             `json:"createdBy"`
}

// PaymentEventResponse entrada de la bitácora de pagos.
type PaymentEventResponse struct {
	ID             string          `json:"id"`
	PreviousPaid   decimal.Decimal `json:"previousPaid"`
	NewPaid        decimal.Decimal `json:"newPaid"`
	PreviousStatus string          `json:"previousStatus"`
	NewStatus      string          `json:"newStatus"`
	ChangedBy      string          `json:"changedBy"`
	ChangedAt      time.Time       `json:"changedAt"`
}
