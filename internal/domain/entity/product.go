package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario de una empresa.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // único por empresa
	Name        string
	Description string
	Unit        string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
}

// IsLowStock indica si el stock está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.MinStock.GreaterThan(decimal.Zero) && p.Stock.LessThanOrEqual(p.MinStock)
}
