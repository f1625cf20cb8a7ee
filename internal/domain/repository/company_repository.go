package repository

import (
	"context"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// CompanyFilter filtros del listado de empresas (solo super-admin).
type CompanyFilter struct {
	Status string
	Search tenancy.Search
	Page   Page
}

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure. GetByID devuelve (nil, nil) si no existe.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, filter CompanyFilter) ([]*entity.Company, error)
}
