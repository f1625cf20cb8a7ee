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

// ContactUseCase clientes y proveedores (módulo CRM).
type ContactUseCase struct {
	repo      repository.ContactRepository
	companies repository.CompanyRepository
	now       func() time.Time
}

// NewContactUseCase construye el caso de uso.
func NewContactUseCase(repo repository.ContactRepository, companies repository.CompanyRepository) *ContactUseCase {
	return &ContactUseCase{repo: repo, companies: companies, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea un contacto activo en la empresa del principal.
func (uc *ContactUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateContactRequest) (*dto.ContactResponse, error) {
	scope, err := scopeFor(p, entity.ModuleCRM, tenancy.WithTargetCompany(in.CompanyID))
	if err != nil {
		return nil, err
	}
	companyID, err := ownerCompany(ctx, uc.companies, p, scope)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("el nombre es requerido")
	}
	if in.Type != entity.ContactTypeCustomer && in.Type != entity.ContactTypeSupplier {
		return nil, domain.Invalid("tipo de contacto inválido: %q", in.Type)
	}
	now := uc.now()
	c := &entity.Contact{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Type:      in.Type,
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: p.UserID,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toContactResponse(c), nil
}

// GetByID contacto activo visible para el principal.
func (uc *ContactUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.ContactResponse, error) {
	scope, err := scopeFor(p, entity.ModuleCRM)
	if err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toContactResponse(c), nil
}

// List contactos activos, más recientes primero.
func (uc *ContactUseCase) List(ctx context.Context, p entity.Principal, in dto.ContactFilter) ([]dto.ContactResponse, error) {
	scope, err := scopeFor(p, entity.ModuleCRM)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	list, err := uc.repo.List(ctx, scope, repository.ContactFilter{
		Type:   in.Type,
		Search: tenancy.NewSearch(in.Search),
		Page:   repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ContactResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toContactResponse(c))
	}
	return items, nil
}

// Update aplica los campos presentes. Las facturas ya emitidas conservan la copia
// del nombre y email del cliente.
func (uc *ContactUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	scope, err := scopeFor(p, entity.ModuleCRM)
	if err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.Type != nil {
		if *in.Type != entity.ContactTypeCustomer && *in.Type != entity.ContactTypeSupplier {
			return nil, domain.Invalid("tipo de contacto inválido: %q", *in.Type)
		}
		c.Type = *in.Type
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("el nombre es requerido")
		}
		c.Name = name
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		c.Address = strings.TrimSpace(*in.Address)
	}
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, scope, c); err != nil {
		return nil, err
	}
	return toContactResponse(c), nil
}

// Delete borrado lógico.
func (uc *ContactUseCase) Delete(ctx context.Context, p entity.Principal, id string) error {
	scope, err := scopeFor(p, entity.ModuleCRM, tenancy.IncludeInactive())
	if err != nil {
		return err
	}
	return uc.repo.SetActive(ctx, scope, id, false, uc.now())
}

func toContactResponse(c *entity.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Type:      c.Type,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		CreatedBy: c.CreatedBy,
	}
}
