package repository

import (
	"context"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// UserFilter filtros del listado de usuarios. CompanyID vacío lista todas las empresas.
type UserFilter struct {
	CompanyID       string
	IncludeInactive bool
	Search          tenancy.Search
	Page            Page
}

// UserRepository puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail busca por email ya normalizado (minúsculas), activo o no.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
}
