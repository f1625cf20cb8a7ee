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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository con pgx. Los montos son NUMERIC ↔ decimal.
type ProductRepo struct {
	q       Querier
	timeout time.Duration
}

// NewProductRepository construye el repositorio.
func NewProductRepository(q Querier, timeout time.Duration) *ProductRepo {
	return &ProductRepo{q: q, timeout: timeout}
}

const productColumns = `id, company_id, sku, name, description, unit, price, cost, stock, min_stock,
	is_active, created_at, updated_at, created_by`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Unit,
		&p.Price, &p.Cost, &p.Stock, &p.MinStock,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto. SKU repetido en la empresa → domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO products (id, company_id, sku, name, description, unit, price, cost, stock, min_stock,
		                      is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Description, p.Unit, p.Price, p.Cost, p.Stock, p.MinStock,
		p.IsActive, p.CreatedAt, p.UpdatedAt, p.CreatedBy,
	)
	return storeErr("insert product", err)
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *ProductRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	w.add("id = " + w.arg(id))
	w.scope(scope)
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products`+w.String(), w.args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("get product", err)
	}
	return p, nil
}

// List filtra por scope, stock bajo y texto (sku, name).
func (r *ProductRepo) List(ctx context.Context, scope tenancy.Scope, f repository.ProductFilter) ([]*entity.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	w.scope(scope)
	if f.LowStockOnly {
		w.add("min_stock > 0 AND stock <= min_stock")
	}
	w.search(f.Search, "sku", "name")
	query := `SELECT ` + productColumns + ` FROM products` + w.String() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan product", err)
		}
		list = append(list, p)
	}
	return list, storeErr("list products", rows.Err())
}

// Update persiste los campos editables dentro del scope.
func (r *ProductRepo) Update(ctx context.Context, scope tenancy.Scope, p *entity.Product) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	set := `sku = ` + w.arg(p.SKU) +
		`, name = ` + w.arg(p.Name) +
		`, description = ` + w.arg(p.Description) +
		`, unit = ` + w.arg(p.Unit) +
		`, price = ` + w.arg(p.Price) +
		`, cost = ` + w.arg(p.Cost) +
		`, stock = ` + w.arg(p.Stock) +
		`, min_stock = ` + w.arg(p.MinStock) +
		`, updated_at = ` + w.arg(p.UpdatedAt)
	w.add("id = " + w.arg(p.ID))
	w.scope(scope)
	tag, err := r.q.Exec(ctx, `UPDATE products SET `+set+w.String(), w.args...)
	if err != nil {
		return storeErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive borrado lógico / restauración.
func (r *ProductRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
	return setActive(ctx, r.q, r.timeout, "products", scope, id, active, at)
}
