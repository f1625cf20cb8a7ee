package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository con pgx.
type CompanyRepo struct {
	q       Querier
	timeout time.Duration
}

// NewCompanyRepository construye el repositorio (pool o tx).
func NewCompanyRepository(q Querier, timeout time.Duration) *CompanyRepo {
	return &CompanyRepo{q: q, timeout: timeout}
}

const companyColumns = `id, name, email, phone, address, status, created_at, updated_at`

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO companies (id, name, email, phone, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.Email, company.Phone, company.Address,
		company.Status, company.CreatedAt, company.UpdatedAt,
	)
	return storeErr("insert company", err)
}

// GetByID obtiene una empresa por ID. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("get company", err)
	}
	return c, nil
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		UPDATE companies
		SET name = $2, email = $3, phone = $4, address = $5, status = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.Email, company.Phone, company.Address,
		company.Status, company.UpdatedAt,
	)
	if err != nil {
		return storeErr("update company", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List empresas ordenadas de la más reciente a la más antigua.
func (r *CompanyRepo) List(ctx context.Context, f repository.CompanyFilter) ([]*entity.Company, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	if f.Status != "" {
		w.add("status = " + w.arg(f.Status))
	}
	w.search(f.Search, "name", "email")
	query := `SELECT ` + companyColumns + ` FROM companies` + w.String() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, storeErr("list companies", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, storeErr("scan company", err)
		}
		list = append(list, c)
	}
	return list, storeErr("list companies", rows.Err())
}
