package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// ProductUseCase catálogo de productos (módulo inventario).
type ProductUseCase struct {
	repo      repository.ProductRepository
	companies repository.CompanyRepository
	now       func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, companies repository.CompanyRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, companies: companies, now: func() time.Time { return time.Now().UTC() }}
}

func nonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.Invalid("%s no puede ser negativo", field)
	}
	return nil
}

func validateAmounts(price, cost, stock, minStock decimal.Decimal) error {
	return errors.Join(
		nonNegative("price", price),
		nonNegative("cost", cost),
		nonNegative("stock", stock),
		nonNegative("minStock", minStock),
	)
}

func (uc *ProductUseCase) newProduct(companyID, createdBy string, in dto.CreateProductRequest) (*entity.Product, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.Invalid("sku y nombre son requeridos")
	}
	if err := validateAmounts(in.Price, in.Cost, in.Stock, in.MinStock); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unidad"
	}
	now := uc.now()
	return &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Unit:        unit,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   createdBy,
	}, nil
}

// Create crea un producto. Devuelve domain.ErrDuplicate si el SKU ya existe en la empresa.
func (uc *ProductUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	scope, err := scopeFor(p, entity.ModuleInventory, tenancy.WithTargetCompany(in.CompanyID))
	if err != nil {
		return nil, err
	}
	companyID, err := ownerCompany(ctx, uc.companies, p, scope)
	if err != nil {
		return nil, err
	}
	product, err := uc.newProduct(companyID, p.UserID, in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// ImportResult resumen de una importación de catálogo.
type ImportResult struct {
	Created    int
	Duplicated int
}

// Import carga un catálogo para una empresa sin principal (tarea de sistema, cmd/seed).
// Los SKU repetidos se cuentan y se omiten; cualquier otro error detiene la carga.
func (uc *ProductUseCase) Import(ctx context.Context, companyID, createdBy string, items []dto.CreateProductRequest) (ImportResult, error) {
	var res ImportResult
	for _, in := range items {
		product, err := uc.newProduct(companyID, createdBy, in)
		if err != nil {
			return res, err
		}
		if err := uc.repo.Create(ctx, product); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				res.Duplicated++
				continue
			}
			return res, err
		}
		res.Created++
	}
	return res, nil
}

// GetByID obtiene un producto activo visible para el principal.
func (uc *ProductUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.ProductResponse, error) {
	scope, err := scopeFor(p, entity.ModuleInventory)
	if err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos presentes.
func (uc *ProductUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	scope, err := scopeFor(p, entity.ModuleInventory)
	if err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != nil {
		if product.SKU = strings.TrimSpace(*in.SKU); product.SKU == "" {
			return nil, domain.Invalid("sku es requerido")
		}
	}
	if in.Name != nil {
		if product.Name = strings.TrimSpace(*in.Name); product.Name == "" {
			return nil, domain.Invalid("el nombre es requerido")
		}
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Unit != nil {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Cost != nil {
		product.Cost = *in.Cost
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if err := validateAmounts(product.Price, product.Cost, product.Stock, product.MinStock); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, scope, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List productos activos, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context, p entity.Principal, in dto.ProductFilter) ([]dto.ProductResponse, error) {
	scope, err := scopeFor(p, entity.ModuleInventory)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	list, err := uc.repo.List(ctx, scope, repository.ProductFilter{
		LowStockOnly: in.LowStock,
		Search:       tenancy.NewSearch(in.Search),
		Page:         repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, product := range list {
		items = append(items, *toProductResponse(product))
	}
	return items, nil
}

// Delete borrado lógico.
func (uc *ProductUseCase) Delete(ctx context.Context, p entity.Principal, id string) error {
	scope, err := scopeFor(p, entity.ModuleInventory, tenancy.IncludeInactive())
	if err != nil {
		return err
	}
	return uc.repo.SetActive(ctx, scope, id, false, uc.now())
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.IsLowStock(),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedBy:   p.CreatedBy,
	}
}
