package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// ProductFilter filtros del listado de productos. La búsqueda cubre sku y name.
type ProductFilter struct {
	LowStockOnly bool
	Search       tenancy.Search
	Page         Page
}

// ProductRepository puerto de persistencia para Product. El SKU es único por empresa:
// Create/Update devuelven domain.ErrDuplicate si se repite.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Product, error)
	List(ctx context.Context, scope tenancy.Scope, filter ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, scope tenancy.Scope, product *entity.Product) error
	SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error
}
