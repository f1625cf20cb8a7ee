package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo empresas en memoria.
type CompanyRepo struct {
	s *Store
}

// NewCompanyRepository construye el repositorio sobre el store.
func NewCompanyRepository(s *Store) *CompanyRepo {
	return &CompanyRepo{s: s}
}

func cloneCompany(c *entity.Company) *entity.Company {
	cp := *c
	return &cp
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies.rows[company.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.companies.insert(company.ID, cloneCompany(company))
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.companies.rows[id]
	if !ok {
		return nil, nil
	}
	return cloneCompany(row.v), nil
}

// Update reemplaza los campos mutables.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.companies.rows[company.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := cloneCompany(company)
	updated.CreatedAt = row.v.CreatedAt
	row.v = updated
	return nil
}

// List filtra por estado y texto (name, email).
func (r *CompanyRepo) List(ctx context.Context, f repository.CompanyFilter) ([]*entity.Company, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.companies.sorted(func(c *entity.Company) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		return f.Search.MatchesAny(c.Name, c.Email)
	}, func(c *entity.Company) time.Time { return c.CreatedAt })
	items = paginate(items, f.Page)
	out := make([]*entity.Company, len(items))
	for i, c := range items {
		out[i] = cloneCompany(c)
	}
	return out, nil
}
