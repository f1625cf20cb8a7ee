package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de UserRepository con pgx. Los módulos se guardan como TEXT[].
type UserRepo struct {
	q       Querier
	timeout time.Duration
}

// NewUserRepository construye el repositorio.
func NewUserRepository(q Querier, timeout time.Duration) *UserRepo {
	return &UserRepo{q: q, timeout: timeout}
}

const userColumns = `id, COALESCE(company_id, ''), email, password_hash, name, role, modules, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u       entity.User
		role    string
		modules []string
	)
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &role, &modules,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.Modules = entity.ModuleAccessFrom(modules)
	return &u, nil
}

func userErr(op string, err error) error {
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	return storeErr(op, err)
}

// Create persiste un usuario. Email repetido → domain.ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO users (id, company_id, email, password_hash, name, role, modules, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		user.ID, nullIfEmpty(user.CompanyID), user.Email, user.PasswordHash, user.Name,
		string(user.Role), user.Modules.Names(), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	return userErr("insert user", err)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, arg any) (*entity.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail busca por email exacto (ya en minúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// Update persiste todos los campos editables del usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		UPDATE users
		SET company_id = $2, email = $3, password_hash = $4, name = $5, role = $6,
		    modules = $7, is_active = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, nullIfEmpty(user.CompanyID), user.Email, user.PasswordHash, user.Name,
		string(user.Role), user.Modules.Names(), user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		return userErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List usuarios filtrados por empresa, estado y texto (name, email).
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	if f.CompanyID != "" {
		w.add("company_id = " + w.arg(f.CompanyID))
	}
	if !f.IncludeInactive {
		w.add("is_active = TRUE")
	}
	w.search(f.Search, "name", "email")
	query := `SELECT ` + userColumns + ` FROM users` + w.String() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("scan user", err)
		}
		list = append(list, u)
	}
	return list, storeErr("list users", rows.Err())
}
