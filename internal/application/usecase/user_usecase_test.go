package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) RevokeUser(_ context.Context, userID string) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func root() entity.Principal {
	return entity.Principal{UserID: "root", Role: entity.RoleSuperAdmin, IsLoggedIn: true}
}

func owner(companyID string, modules entity.ModuleAccess) entity.Principal {
	return entity.Principal{UserID: "owner-" + companyID, Role: entity.RoleOwner, CompanyID: companyID, Modules: modules, IsLoggedIn: true}
}

func newAdmin(t *testing.T) (*usecase.UserUseCase, *usecase.CompanyUseCase, *recordingRevoker) {
	t.Helper()
	store := memory.NewStore()
	revoker := &recordingRevoker{}
	companies := usecase.NewCompanyUseCase(memory.NewCompanyRepository(store))
	users := usecase.NewUserUseCase(memory.NewUserRepository(store), memory.NewCompanyRepository(store), revoker, bcrypt.MinCost)
	return users, companies, revoker
}

// ─── Usuarios ─────────────────────────────────────────────────────────────────

func TestUserUseCase_CrearNormalizaEmailYHashea(t *testing.T) {
	users, companies, _ := newAdmin(t)
	ctx := context.Background()
	company, err := companies.Create(ctx, root(), dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	u, err := users.Create(ctx, root(), dto.CreateUserRequest{
		CompanyID: company.ID, Email: "  Ana@Acme.TEST ", Password: "secreto123", Name: "Ana",
		Role: "owner", Modules: dto.ModulesDTO{Sales: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.test", u.Email)
	assert.True(t, u.IsActive)
	assert.True(t, u.Modules.Sales)
	assert.False(t, u.Modules.CRM)

	_, err = users.Create(ctx, root(), dto.CreateUserRequest{
		CompanyID: company.ID, Email: "ANA@acme.test", Password: "otro12345", Name: "Otra", Role: "staff",
	})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestUserUseCase_EmpresaSegunRol(t *testing.T) {
	users, _, _ := newAdmin(t)
	ctx := context.Background()

	_, err := users.Create(ctx, root(), dto.CreateUserRequest{Email: "x@y.test", Password: "secreto123", Name: "X", Role: "staff"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "staff sin empresa")

	_, err = users.Create(ctx, root(), dto.CreateUserRequest{CompanyID: "no-existe", Email: "x@y.test", Password: "secreto123", Name: "X", Role: "staff"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "empresa inexistente")

	admin, err := users.Create(ctx, root(), dto.CreateUserRequest{CompanyID: "ignorada", Email: "admin@y.test", Password: "secreto123", Name: "Admin", Role: "super-admin"})
	require.NoError(t, err)
	assert.Empty(t, admin.CompanyID)
}

func TestUserUseCase_SoloSuperAdmin(t *testing.T) {
	users, companies, _ := newAdmin(t)
	ctx := context.Background()
	p := owner("A", entity.ModuleAccess{CRM: true, HR: true, Inventory: true, Sales: true})

	_, err := users.List(ctx, p, dto.UserFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = companies.List(ctx, p, dto.CompanyFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = companies.List(ctx, entity.Anonymous(), dto.CompanyFilter{})
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestUserUseCase_CambiosRevocanSesiones(t *testing.T) {
	users, companies, revoker := newAdmin(t)
	ctx := context.Background()
	company, err := companies.Create(ctx, root(), dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	u, err := users.Create(ctx, root(), dto.CreateUserRequest{CompanyID: company.ID, Email: "bo@acme.test", Password: "secreto123", Name: "Bo", Role: "staff"})
	require.NoError(t, err)

	name := "Bo Díaz"
	_, err = users.Update(ctx, root(), u.ID, dto.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Empty(t, revoker.revoked, "cambiar el nombre no afecta permisos")

	updated, err := users.Update(ctx, root(), u.ID, dto.UpdateUserRequest{Modules: &dto.ModulesDTO{Sales: true}})
	require.NoError(t, err)
	assert.True(t, updated.Modules.Sales)
	assert.Equal(t, []string{u.ID}, revoker.revoked)

	require.NoError(t, users.Delete(ctx, root(), u.ID))
	assert.Len(t, revoker.revoked, 2)

	list, err := users.List(ctx, root(), dto.UserFilter{CompanyID: company.ID})
	require.NoError(t, err)
	assert.Empty(t, list, "los usuarios desactivados no se listan por defecto")

	list, err = users.List(ctx, root(), dto.UserFilter{CompanyID: company.ID, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
}

// ─── Empresas ─────────────────────────────────────────────────────────────────

func TestCompanyUseCase_DeleteDesactiva(t *testing.T) {
	_, companies, _ := newAdmin(t)
	ctx := context.Background()
	company, err := companies.Create(ctx, root(), dto.CreateCompanyRequest{Name: "  Acme  ", Email: "Info@Acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, "info@acme.test", company.Email)
	assert.Equal(t, entity.CompanyStatusActive, company.Status)

	require.NoError(t, companies.Delete(ctx, root(), company.ID))
	got, err := companies.GetByID(ctx, root(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CompanyStatusInactive, got.Status)

	active, err := companies.List(ctx, root(), dto.CompanyFilter{Status: "active"})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = companies.GetByID(ctx, root(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
