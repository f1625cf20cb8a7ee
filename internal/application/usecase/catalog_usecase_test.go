package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newContacts() *usecase.ContactUseCase {
	store := memory.NewStore()
	return usecase.NewContactUseCase(memory.NewContactRepository(store), memory.NewCompanyRepository(store))
}

func newProducts() *usecase.ProductUseCase {
	store := memory.NewStore()
	return usecase.NewProductUseCase(memory.NewProductRepository(store), memory.NewCompanyRepository(store))
}

func TestContactUseCase_AislamientoYBorrado(t *testing.T) {
	uc := newContacts()
	ctx := context.Background()
	a := owner("A", entity.ModuleAccess{CRM: true})
	b := owner("B", entity.ModuleAccess{CRM: true})

	c, err := uc.Create(ctx, a, dto.CreateContactRequest{Type: "customer", Name: "Acme", Email: "Compras@Acme.test", CompanyID: "B"})
	require.NoError(t, err)
	assert.Equal(t, "A", c.CompanyID, "la empresa objetivo solo aplica a super-admin")
	assert.Equal(t, "compras@acme.test", c.Email)
	assert.Equal(t, "owner-A", c.CreatedBy)

	_, err = uc.GetByID(ctx, b, c.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err := uc.List(ctx, b, dto.ContactFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, uc.Delete(ctx, a, c.ID))
	_, err = uc.GetByID(ctx, a, c.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.List(ctx, owner("A", entity.ModuleAccess{Sales: true}), dto.ContactFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden), "sin módulo crm")
}

func TestProductUseCase_SKUyMontos(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()
	p := owner("A", entity.ModuleAccess{Inventory: true})

	created, err := uc.Create(ctx, p, dto.CreateProductRequest{SKU: "W-1", Name: "Widget", Price: d("100"), Stock: d("3"), MinStock: d("5")})
	require.NoError(t, err)
	assert.True(t, created.LowStock)
	assert.Equal(t, "unidad", created.Unit)

	_, err = uc.Create(ctx, p, dto.CreateProductRequest{SKU: "W-1", Name: "Otro"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = uc.Create(ctx, p, dto.CreateProductRequest{SKU: "W-2", Name: "Negativo", Price: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	stock := d("10")
	updated, err := uc.Update(ctx, p, created.ID, dto.UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.False(t, updated.LowStock)

	low, err := uc.List(ctx, p, dto.ProductFilter{LowStock: true})
	require.NoError(t, err)
	assert.Empty(t, low)
}

func TestProductUseCase_ImportOmiteDuplicados(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()

	res, err := uc.Import(ctx, "A", "seed", []dto.CreateProductRequest{
		{SKU: "A-1", Name: "Café"},
		{SKU: "A-2", Name: "Té"},
		{SKU: "A-1", Name: "Café repetido"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Duplicated)

	list, err := uc.List(ctx, owner("A", entity.ModuleAccess{Inventory: true}), dto.ProductFilter{Search: "caf"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Café", list[0].Name)
}

func TestCatalogo_SuperAdminEmpresaObjetivoDebeExistir(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	companies := memory.NewCompanyRepository(store)
	require.NoError(t, companies.Create(ctx, &entity.Company{ID: "A", Name: "Acme", Status: entity.CompanyStatusActive}))
	require.NoError(t, companies.Create(ctx, &entity.Company{ID: "Z", Name: "Cerrada", Status: entity.CompanyStatusInactive}))
	contactRepo := memory.NewContactRepository(store)
	productRepo := memory.NewProductRepository(store)
	contacts := usecase.NewContactUseCase(contactRepo, companies)
	products := usecase.NewProductUseCase(productRepo, companies)

	for _, target := range []string{"no-such-company", "Z"} {
		_, err := contacts.Create(ctx, root(), dto.CreateContactRequest{Type: "customer", Name: "Fantasma", CompanyID: target})
		require.Error(t, err, target)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), target)
		assert.Contains(t, err.Error(), "empresa no encontrada")

		_, err = products.Create(ctx, root(), dto.CreateProductRequest{SKU: "X-1", Name: "Fantasma", CompanyID: target})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), target)
	}

	list, err := contacts.List(ctx, root(), dto.ContactFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "nada se persiste en una empresa inexistente")

	c, err := contacts.Create(ctx, root(), dto.CreateContactRequest{Type: "customer", Name: "Real", CompanyID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", c.CompanyID)

	pr, err := products.Create(ctx, root(), dto.CreateProductRequest{SKU: "A-1", Name: "Real", CompanyID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", pr.CompanyID)
}
