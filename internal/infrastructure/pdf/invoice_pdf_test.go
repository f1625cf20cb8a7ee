package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"999.5":     "999,50",
		"25000":     "25.000,00",
		"1000000.1": "1.000.000,10",
		"-1234.567": "-1.234,57",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-000001",
		CompanyID:     "A",
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		LineItems: []entity.LineItem{{
			ProductName: "Widget",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(50),
			TaxPercent:  decimal.NewFromInt(10),
			Total:       decimal.NewFromInt(110),
		}},
		Subtotal:        decimal.NewFromInt(100),
		TotalTax:        decimal.NewFromInt(10),
		GrandTotal:      decimal.NewFromInt(110),
		Status:          entity.InvoiceStatusPartiallyPaid,
		PaidAmount:      decimal.NewFromInt(50),
		RemainingAmount: decimal.NewFromInt(60),
		IssueDate:       issued,
		DueDate:         issued.AddDate(0, 0, 30),
		Notes:           "Gracias por su compra",
	}
	company := &entity.Company{ID: "A", Name: "Acme", Status: entity.CompanyStatusActive}

	out, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), inv, company)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_RequiresCompany(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), &entity.Invoice{}, nil)
	assert.Error(t, err)
}

func TestVerificationData(t *testing.T) {
	inv := &entity.Invoice{
		InvoiceNumber: "INV-000007",
		CompanyID:     "A",
		GrandTotal:    decimal.RequireFromString("10.5"),
		IssueDate:     time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "NumFac=INV-000007\nEmp=A\nValTot=10.50\nFecFac=2026-01-02", verificationData(inv))
}
