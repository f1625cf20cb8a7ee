package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria. SKU único por empresa.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio sobre el store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func (r *ProductRepo) skuTaken(companyID, sku, exceptID string) bool {
	for id, row := range r.s.products.rows {
		if id != exceptID && row.v.CompanyID == companyID && row.v.SKU == sku {
			return true
		}
	}
	return false
}

// Create persiste un producto nuevo.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.skuTaken(product.CompanyID, product.SKU, "") {
		return domain.ErrDuplicate
	}
	r.s.products.insert(product.ID, cloneProduct(product))
	return nil
}

func (r *ProductRepo) scoped(scope tenancy.Scope, id string) (*row[*entity.Product], bool) {
	row, ok := r.s.products.rows[id]
	if !ok || !scope.Allows(row.v.CompanyID, row.v.IsActive) {
		return nil, false
	}
	return row, true
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *ProductRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Product, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.scoped(scope, id)
	if !ok {
		return nil, nil
	}
	return cloneProduct(row.v), nil
}

// List filtra por scope, stock bajo y texto (sku, name).
func (r *ProductRepo) List(ctx context.Context, scope tenancy.Scope, f repository.ProductFilter) ([]*entity.Product, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.products.sorted(func(p *entity.Product) bool {
		if !scope.Allows(p.CompanyID, p.IsActive) {
			return false
		}
		if f.LowStockOnly && !p.IsLowStock() {
			return false
		}
		return f.Search.MatchesAny(p.SKU, p.Name)
	}, func(p *entity.Product) time.Time { return p.CreatedAt })
	items = paginate(items, f.Page)
	out := make([]*entity.Product, len(items))
	for i, p := range items {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

// Update persiste los campos mutables de un producto dentro del scope.
func (r *ProductRepo) Update(ctx context.Context, scope tenancy.Scope, product *entity.Product) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.scoped(scope, product.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if r.skuTaken(row.v.CompanyID, product.SKU, product.ID) {
		return domain.ErrDuplicate
	}
	updated := cloneProduct(product)
	updated.CompanyID = row.v.CompanyID
	updated.CreatedAt = row.v.CreatedAt
	updated.CreatedBy = row.v.CreatedBy
	updated.IsActive = row.v.IsActive
	row.v = updated
	return nil
}

// SetActive borrado lógico / restauración.
func (r *ProductRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
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
