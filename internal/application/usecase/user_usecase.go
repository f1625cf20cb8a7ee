package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// SessionRevoker invalida las sesiones abiertas de un usuario.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// UserUseCase administración de usuarios. Solo super-admin.
type UserUseCase struct {
	repo        repository.UserRepository
	companyRepo repository.CompanyRepository
	revoker     SessionRevoker
	bcryptCost  int
	now         func() time.Time
}

// NewUserUseCase construye el caso de uso. bcryptCost <= 0 usa bcrypt.DefaultCost.
func NewUserUseCase(repo repository.UserRepository, companyRepo repository.CompanyRepository, revoker SessionRevoker, bcryptCost int) *UserUseCase {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserUseCase{
		repo:        repo,
		companyRepo: companyRepo,
		revoker:     revoker,
		bcryptCost:  bcryptCost,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HashPassword hashea con bcrypt al costo configurado.
func (uc *UserUseCase) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// resolveCompany valida la empresa según el rol: super-admin no tiene empresa,
// owner/staff deben pertenecer a una empresa existente.
func (uc *UserUseCase) resolveCompany(ctx context.Context, role entity.Role, companyID string) (string, error) {
	if role == entity.RoleSuperAdmin {
		return "", nil
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return "", domain.Invalid("companyId es requerido para el rol %s", role)
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", domain.Invalid("empresa no encontrada")
	}
	return company.ID, nil
}

// Create crea un usuario activo. El email se guarda en minúsculas y es único.
func (uc *UserUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	return uc.create(ctx, in)
}

// Bootstrap crea un usuario sin principal (primer super-admin desde cmd/seed).
func (uc *UserUseCase) Bootstrap(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, in)
}

func (uc *UserUseCase) create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, domain.Invalid("rol inválido: %q", in.Role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 8 {
		return nil, domain.Invalid("email y password (mínimo 8 caracteres) son requeridos")
	}
	companyID, err := uc.resolveCompany(ctx, role, in.CompanyID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := uc.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Modules:      modulesFromDTO(in.Modules),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID (activo o no).
func (uc *UserUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func (uc *UserUseCase) load(ctx context.Context, p entity.Principal, id string) (*entity.User, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// List lista usuarios, opcionalmente de una sola empresa.
func (uc *UserUseCase) List(ctx context.Context, p entity.Principal, in dto.UserFilter) ([]dto.UserResponse, error) {
	if err := requireSuperAdmin(p); err != nil {
		return nil, err
	}
	in.Normalize()
	list, err := uc.repo.List(ctx, repository.UserFilter{
		CompanyID:       strings.TrimSpace(in.CompanyID),
		IncludeInactive: in.IncludeInactive,
		Search:          tenancy.NewSearch(in.Search),
		Page:            repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return items, nil
}

// Update aplica los campos presentes. Cambios de rol, módulos, empresa, email,
// password o estado invalidan las sesiones abiertas del usuario.
func (uc *UserUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	revoke := false

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			user.Name = name
		}
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			user.Email = email
			revoke = true
		}
	}
	if in.Password != nil {
		hash, err := uc.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		revoke = true
	}
	role := user.Role
	if in.Role != nil {
		role = entity.Role(*in.Role)
		if !role.Valid() {
			return nil, domain.Invalid("rol inválido: %q", *in.Role)
		}
	}
	companyID := user.CompanyID
	if in.CompanyID != nil {
		companyID = *in.CompanyID
	}
	if role != user.Role || companyID != user.CompanyID {
		resolved, err := uc.resolveCompany(ctx, role, companyID)
		if err != nil {
			return nil, err
		}
		user.Role, user.CompanyID = role, resolved
		revoke = true
	}
	if in.Modules != nil {
		modules := modulesFromDTO(*in.Modules)
		if modules != user.Modules {
			user.Modules = modules
			revoke = true
		}
	}
	if in.IsActive != nil && *in.IsActive != user.IsActive {
		user.IsActive = *in.IsActive
		revoke = true
	}

	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		if err := uc.revoker.RevokeUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return entityToUserResponse(user), nil
}

// Delete desactiva al usuario e invalida sus sesiones. Un super-admin no puede desactivarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, p entity.Principal, id string) error {
	user, err := uc.load(ctx, p, id)
	if err != nil {
		return err
	}
	if user.ID == p.UserID {
		return domain.Invalid("no puede desactivar su propio usuario")
	}
	user.IsActive = false
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return err
	}
	return uc.revoker.RevokeUser(ctx, user.ID)
}

func modulesFromDTO(m dto.ModulesDTO) entity.ModuleAccess {
	return entity.ModuleAccess{CRM: m.CRM, HR: m.HR, Inventory: m.Inventory, Sales: m.Sales}
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Modules: dto.ModulesDTO{
			CRM:       u.Modules.CRM,
			HR:        u.Modules.HR,
			Inventory: u.Modules.Inventory,
			Sales:     u.Modules.Sales,
		},
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
