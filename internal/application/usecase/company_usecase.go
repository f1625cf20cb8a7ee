package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// CompanyUseCase administración de empresas (tenants). Solo super-admin.
type CompanyUseCase struct {
	repo repository.CompanyRepository
	now  func() time.Time
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea una nueva empresa activa.
func (uc *CompanyUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("el nombre es requerido")
	}
	now := uc.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Status:    entity.CompanyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID (activa o no).
func (uc *CompanyUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func (uc *CompanyUseCase) load(ctx context.Context, p entity.Principal, id string) (*entity.Company, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// List lista empresas, más recientes primero.
func (uc *CompanyUseCase) List(ctx context.Context, p entity.Principal, in dto.CompanyFilter) ([]dto.CompanyResponse, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	in.Normalize()
	list, err := uc.repo.List(ctx, repository.CompanyFilter{
		Status: in.Status,
		Search: tenancy.NewSearch(in.Search),
		Page:   repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return items, nil
}

// Update aplica los campos presentes.
func (uc *CompanyUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("el nombre es requerido")
		}
		company.Name = name
	}
	if in.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		company.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		company.Address = strings.TrimSpace(*in.Address)
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.CompanyStatusActive, entity.CompanyStatusInactive:
			company.Status = *in.Status
		default:
			return nil, domain.Invalid("estado de empresa inválido: %q", *in.Status)
		}
	}
	company.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete desactiva la empresa (status=inactive). Sus datos se conservan.
func (uc *CompanyUseCase) Delete(ctx context.Context, p entity.Principal, id string) error {
	company, err := uc.load(ctx, p, id)
	if err != nil {
		return err
	}
	company.Status = entity.CompanyStatusInactive
	company.UpdatedAt = uc.now()
	return uc.repo.Update(ctx, company)
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
