package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria. El email es único en todo el sistema.
type UserRepo struct {
	s *Store
}

// NewUserRepository construye el repositorio sobre el store.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

func (r *UserRepo) emailTaken(email, exceptID string) bool {
	for id, row := range r.s.users.rows {
		if id != exceptID && row.v.Email == email {
			return true
		}
	}
	return false
}

// Create persiste un usuario nuevo.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return domain.ErrEmailAlreadyExists
	}
	r.s.users.insert(user.ID, cloneUser(user))
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.users.rows[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(row.v), nil
}

// GetByEmail busca por email exacto (ya en minúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.users.rows {
		if row.v.Email == email {
			return cloneUser(row.v), nil
		}
	}
	return nil, nil
}

// Update reemplaza los campos mutables.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users.rows[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return domain.ErrEmailAlreadyExists
	}
	updated := cloneUser(user)
	updated.CreatedAt = row.v.CreatedAt
	row.v = updated
	return nil
}

// List filtra por empresa, estado y texto (name, email).
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.users.sorted(func(u *entity.User) bool {
		if f.CompanyID != "" && u.CompanyID != f.CompanyID {
			return false
		}
		if !f.IncludeInactive && !u.IsActive {
			return false
		}
		return f.Search.MatchesAny(u.Name, u.Email)
	}, func(u *entity.User) time.Time { return u.CreatedAt })
	items = paginate(items, f.Page)
	out := make([]*entity.User, len(items))
	for i, u := range items {
		out[i] = cloneUser(u)
	}
	return out, nil
}
