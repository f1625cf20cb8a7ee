package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/application/auth"
	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
)

const secret = "0123456789abcdef0123456789abcdef"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.UserRepo) {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, users.Create(context.Background(), &entity.User{
		ID: "u-1", CompanyID: "c-1", Email: "ana@acme.test", PasswordHash: string(hash), Name: "Ana",
		Role: entity.RoleOwner, Modules: entity.ModuleAccess{CRM: true, Sales: true}, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, users.Create(context.Background(), &entity.User{
		ID: "u-2", CompanyID: "c-1", Email: "baja@acme.test", PasswordHash: string(hash), Name: "Baja",
		Role: entity.RoleStaff, IsActive: false, CreatedAt: now, UpdatedAt: now,
	}))

	uc := auth.NewAuthUseCase(users, memory.NewRevocationStore(), auth.SessionConfig{
		Secret: secret, Issuer: "erp-suite", TTL: 7 * 24 * time.Hour,
	})
	return uc, users
}

func TestLogin_ResuelvePrincipal(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	session, err := uc.Login(ctx, dto.LoginRequest{Email: " ANA@acme.test ", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), session.ExpiresAt, time.Minute)

	p, err := uc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, p.IsLoggedIn)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "c-1", p.CompanyID)
	assert.Equal(t, entity.RoleOwner, p.Role)
	assert.True(t, p.Modules.Sales)
	assert.True(t, p.Modules.CRM)
	assert.False(t, p.Modules.Inventory)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	cases := map[string]dto.LoginRequest{
		"password incorrecto": {Email: "ana@acme.test", Password: "otra"},
		"usuario inexistente": {Email: "nadie@acme.test", Password: "secreto123"},
		"usuario inactivo":    {Email: "baja@acme.test", Password: "secreto123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Login(ctx, in)
			assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
		})
	}
}

func TestResolve_SinTokenOInvalido(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	for _, token := range []string{"", "basura", "a.b.c"} {
		p, err := uc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.False(t, p.IsLoggedIn, token)
	}
}

func TestLogout_RevocaToken(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	session, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "secreto123"})
	require.NoError(t, err)
	require.NoError(t, uc.Logout(ctx, session.Token))

	p, err := uc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.False(t, p.IsLoggedIn)

	assert.NoError(t, uc.Logout(ctx, "basura"), "un token inválido no es error")
}

func TestRevokeUser_InvalidaSesionesAnteriores(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	session, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "secreto123"})
	require.NoError(t, err)

	// La revocación ocurre en un segundo posterior a la emisión.
	uc.WithClock(func() time.Time { return time.Now().Add(2 * time.Second) })
	require.NoError(t, uc.RevokeUser(ctx, "u-1"))

	p, err := uc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.False(t, p.IsLoggedIn)

	// Un login posterior a la revocación vuelve a ser válido.
	uc.WithClock(func() time.Time { return time.Now().Add(3 * time.Second) })
	again, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "secreto123"})
	require.NoError(t, err)
	p, err = uc.Resolve(ctx, again.Token)
	require.NoError(t, err)
	assert.True(t, p.IsLoggedIn)
}

func TestToPrincipalResponse(t *testing.T) {
	resp := auth.ToPrincipalResponse(entity.Principal{
		UserID: "u-1", Role: entity.RoleStaff, CompanyID: "c-1",
		Modules: entity.ModuleAccess{HR: true, Sales: true}, IsLoggedIn: true,
	})
	assert.Equal(t, []string{"hr", "sales"}, resp.EnabledModules)
	assert.True(t, resp.Modules.HR)
	assert.Equal(t, "staff", resp.Role)
}
