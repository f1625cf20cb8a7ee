package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

var _ repository.ContactRepository = (*ContactRepo)(nil)

// ContactRepo contactos en memoria; el Scope se evalúa con tenancy.Scope.Allows.
type ContactRepo struct {
	s *Store
}

// NewContactRepository construye el repositorio sobre el store.
func NewContactRepository(s *Store) *ContactRepo {
	return &ContactRepo{s: s}
}

func cloneContact(c *entity.Contact) *entity.Contact {
	cp := *c
	return &cp
}

// Create persiste un contacto nuevo.
func (r *ContactRepo) Create(ctx context.Context, contact *entity.Contact) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts.rows[contact.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.contacts.insert(contact.ID, cloneContact(contact))
	return nil
}

func (r *ContactRepo) scoped(scope tenancy.Scope, id string) (*row[*entity.Contact], bool) {
	row, ok := r.s.contacts.rows[id]
	if !ok || !scope.Allows(row.v.CompanyID, row.v.IsActive) {
		return nil, false
	}
	return row, true
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *ContactRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Contact, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.scoped(scope, id)
	if !ok {
		return nil, nil
	}
	return cloneContact(row.v), nil
}

// List filtra por scope, tipo y texto (name, email, phone).
func (r *ContactRepo) List(ctx context.Context, scope tenancy.Scope, f repository.ContactFilter) ([]*entity.Contact, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.contacts.sorted(func(c *entity.Contact) bool {
		if !scope.Allows(c.CompanyID, c.IsActive) {
			return false
		}
		if f.Type != "" && c.Type != f.Type {
			return false
		}
		return f.Search.MatchesAny(c.Name, c.Email, c.Phone)
	}, func(c *entity.Contact) time.Time { return c.CreatedAt })
	items = paginate(items, f.Page)
	out := make([]*entity.Contact, len(items))
	for i, c := range items {
		out[i] = cloneContact(c)
	}
	return out, nil
}

// Update persiste los campos mutables de un contacto dentro del scope.
func (r *ContactRepo) Update(ctx context.Context, scope tenancy.Scope, contact *entity.Contact) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.scoped(scope, contact.ID)
	if !ok {
		return domain.ErrNotFound
	}
	c := row.v
	c.Type, c.Name, c.Email, c.Phone, c.Address = contact.Type, contact.Name, contact.Email, contact.Phone, contact.Address
	c.UpdatedAt = contact.UpdatedAt
	return nil
}

// SetActive borrado lógico / restauración.
func (r *ContactRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.scoped(scope, id)
	if !ok {
		return domain.ErrNotFound
	}
	row.v.IsActive = active
	row.v.UpdatedAt = at
	return nil
}
