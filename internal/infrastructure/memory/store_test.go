package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
)

func scopeFor(t *testing.T, companyID string, opts ...tenancy.Option) tenancy.Scope {
	t.Helper()
	s, err := tenancy.Build(entity.Principal{UserID: "u", Role: entity.RoleOwner, CompanyID: companyID, IsLoggedIn: true}, opts...)
	require.NoError(t, err)
	return s
}

func TestContactRepo_AislamientoEntreEmpresas(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewContactRepository(memory.NewStore())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &entity.Contact{ID: "a1", CompanyID: "A", Type: entity.ContactTypeCustomer, Name: "Acme", IsActive: true, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &entity.Contact{ID: "a2", CompanyID: "A", Type: entity.ContactTypeSupplier, Name: "Proveedor", IsActive: true, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.Contact{ID: "b1", CompanyID: "B", Type: entity.ContactTypeCustomer, Name: "Beta", IsActive: true, CreatedAt: base}))

	list, err := repo.List(ctx, scopeFor(t, "A"), repository.ContactFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID, "más recientes primero")

	got, err := repo.GetByID(ctx, scopeFor(t, "A"), "b1")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Update(ctx, scopeFor(t, "A"), &entity.Contact{ID: "b1", Name: "hack"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	customers, err := repo.List(ctx, scopeFor(t, "A"), repository.ContactFilter{Type: entity.ContactTypeCustomer})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "a1", customers[0].ID)
}

func TestInvoiceRepo_BorradoLogico(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInvoiceRepository(memory.NewStore())
	inv := &entity.Invoice{ID: "i1", CompanyID: "A", InvoiceNumber: "INV-000001", IsActive: true, Status: entity.InvoiceStatusUnpaid}
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, repo.SetActive(ctx, scopeFor(t, "A", tenancy.IncludeInactive()), "i1", false, time.Now()))
	require.NoError(t, repo.SetActive(ctx, scopeFor(t, "A", tenancy.IncludeInactive()), "i1", false, time.Now()), "borrar dos veces no es error")

	got, err := repo.GetByID(ctx, scopeFor(t, "A"), "i1")
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := repo.List(ctx, scopeFor(t, "A"), repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.Create(ctx, &entity.Invoice{ID: "i2", CompanyID: "A", InvoiceNumber: "INV-000001"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "el número no se reutiliza tras el borrado lógico")
}

func TestSequenceRepo_ConcurrenciaSinDuplicados(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSequenceRepository(memory.NewStore())

	const n = 50
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(ctx, "A")
			assert.NoError(t, err)
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, n)

	other, err := repo.Next(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "cada empresa tiene su propia secuencia")
}

func TestRepos_ContextoVencidoEsTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := memory.NewInvoiceRepository(memory.NewStore()).List(ctx, scopeFor(t, "A"), repository.InvoiceFilter{})
	assert.True(t, errors.Is(err, domain.ErrTimeout))
}

func TestProductRepo_SKUUnicoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(memory.NewStore())

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", CompanyID: "A", SKU: "SKU-1", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p2", CompanyID: "B", SKU: "SKU-1", IsActive: true}))
	err := repo.Create(ctx, &entity.Product{ID: "p3", CompanyID: "A", SKU: "SKU-1", IsActive: true})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestRevocationStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewRevocationStore()

	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-viejo", time.Now().Add(-time.Minute)))
	revoked, err = s.IsTokenRevoked(ctx, "jti-viejo")
	require.NoError(t, err)
	assert.False(t, revoked, "un token ya expirado no necesita marca")

	at := time.Now()
	require.NoError(t, s.RevokeUser(ctx, "u-1", at, time.Hour))
	got, ok, err := s.UserRevokedAt(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(at))

	_, ok, err = s.UserRevokedAt(ctx, "u-2")
	require.NoError(t, err)
	assert.False(t, ok)
}
