package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// ContactFilter filtros del listado de contactos (CRM). La búsqueda cubre name, email y phone.
type ContactFilter struct {
	Type   string
	Search tenancy.Search
	Page   Page
}

// ContactRepository puerto de persistencia para Contact. Toda lectura y escritura
// sobre registros existentes recibe el Scope del principal; un registro fuera
// del scope se comporta igual que uno inexistente.
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Contact, error)
	List(ctx context.Context, scope tenancy.Scope, filter ContactFilter) ([]*entity.Contact, error)
	// Update devuelve domain.ErrNotFound si el registro no está dentro del scope.
	Update(ctx context.Context, scope tenancy.Scope, contact *entity.Contact) error
	SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error
}
