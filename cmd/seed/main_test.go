package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/app"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
	"github.com/jhoicas/erp-suite/internal/infrastructure/catalog"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

func memoryEnv(t *testing.T) *seedEnv {
	t.Helper()
	cfg := &config.Config{
		Store:   config.StoreConfig{Driver: config.StoreDriverMemory, TimeoutMS: 1000},
		Session: config.SessionConfig{Secret: "s", Issuer: "erp-test", TTLHours: 1},
		Auth:    config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	repos := app.NewMemoryRepositories()
	return &seedEnv{
		cfg:   cfg,
		log:   logger.Nop(),
		repos: repos,
		svc:   app.NewServices(cfg, repos, memory.NewRevocationStore(), nil, logger.Nop()),
	}
}

func TestImportProducts(t *testing.T) {
	ctx := context.Background()
	env := memoryEnv(t)
	now := time.Now()
	require.NoError(t, env.repos.Companies.Create(ctx, &entity.Company{
		ID: "c-1", Name: "Acme", Status: entity.CompanyStatusActive, CreatedAt: now, UpdatedAt: now,
	}))

	file := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(file, []byte("sku,name,price\nA-1,Uno,10\nA-1,Uno repetido,10\nB-2,Dos,20\n"), 0o600))

	err := importProducts(ctx, env, productsFlags{companyID: "c-1", file: file, createdBy: "seed"}, catalog.EncodingAuto)
	require.NoError(t, err)

	scope, err := tenancy.Build(entity.Principal{
		UserID: "u", Role: entity.RoleOwner, CompanyID: "c-1",
		Modules: entity.ModuleAccess{Inventory: true}, IsLoggedIn: true,
	})
	require.NoError(t, err)
	list, err := env.repos.Products.List(ctx, scope, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImportProducts_EmpresaInexistente(t *testing.T) {
	env := memoryEnv(t)
	err := importProducts(context.Background(), env, productsFlags{companyID: "nope", file: "x.csv"}, catalog.EncodingAuto)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRootCmd_FlagsRequeridos(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"products", "--file", "x.csv"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company")
}
