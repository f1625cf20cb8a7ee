package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/app"
	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Store:   config.StoreConfig{Driver: config.StoreDriverMemory, TimeoutMS: 1000},
		Session: config.SessionConfig{Secret: "s", Issuer: "erp-test", TTLHours: 1},
		Auth:    config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Seed:    config.SeedConfig{AdminEmail: "Root@ERP.test", AdminPassword: "secreto123", AdminName: "Root"},
	}
}

func TestOpenRepositories_Memoria(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	repos, err := app.OpenRepositories(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()
	assert.NoError(t, repos.Ping(ctx))

	cfg.Store.Driver = "sqlite"
	_, err = app.OpenRepositories(ctx, cfg, logger.Nop())
	assert.Error(t, err)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	revocations, closeFn, err := app.OpenRevocations(ctx, cfg.Redis, logger.Nop())
	require.NoError(t, err)
	defer closeFn()
	svc := app.NewServices(cfg, app.NewMemoryRepositories(), revocations, nil, logger.Nop())

	created, err := app.EnsureAdmin(ctx, svc.Users, cfg.Seed, logger.Nop())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = app.EnsureAdmin(ctx, svc.Users, cfg.Seed, logger.Nop())
	require.NoError(t, err)
	assert.False(t, created)

	session, err := svc.Auth.Login(ctx, dto.LoginRequest{Email: "root@erp.test", Password: "secreto123"})
	require.NoError(t, err)
	assert.True(t, session.Principal.IsSuperAdmin())

	created, err = app.EnsureAdmin(ctx, svc.Users, config.SeedConfig{}, logger.Nop())
	require.NoError(t, err)
	assert.False(t, created, "sin credenciales no hace nada")
}
