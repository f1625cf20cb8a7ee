package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

var _ repository.ContactRepository = (*ContactRepo)(nil)

// ContactRepo contactos (clientes/proveedores) con pgx. Toda consulta aplica el Scope.
type ContactRepo struct {
	q       Querier
	timeout time.Duration
}

// NewContactRepository construye el repositorio.
func NewContactRepository(q Querier, timeout time.Duration) *ContactRepo {
	return &ContactRepo{q: q, timeout: timeout}
}

const contactColumns = `id, company_id, type, name, email, phone, address, is_active, created_at, updated_at, created_by`

func scanContact(row pgx.Row) (*entity.Contact, error) {
	var c entity.Contact
	err := row.Scan(&c.ID, &c.CompanyID, &c.Type, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un contacto.
func (r *ContactRepo) Create(ctx context.Context, contact *entity.Contact) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		INSERT INTO contacts (id, company_id, type, name, email, phone, address, is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		contact.ID, contact.CompanyID, contact.Type, contact.Name, contact.Email, contact.Phone,
		contact.Address, contact.IsActive, contact.CreatedAt, contact.UpdatedAt, contact.CreatedBy,
	)
	return storeErr("insert contact", err)
}

// GetByID devuelve (nil, nil) si no existe o está fuera del scope.
func (r *ContactRepo) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Contact, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	w.add("id = " + w.arg(id))
	w.scope(scope)
	c, err := scanContact(r.q.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts`+w.String(), w.args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("get contact", err)
	}
	return c, nil
}

// List filtra por scope, tipo y texto (name, email, phone).
func (r *ContactRepo) List(ctx context.Context, scope tenancy.Scope, f repository.ContactFilter) ([]*entity.Contact, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	w.scope(scope)
	if f.Type != "" {
		w.add("type = " + w.arg(f.Type))
	}
	w.search(f.Search, "name", "email", "phone")
	query := `SELECT ` + contactColumns + ` FROM contacts` + w.String() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Page)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, storeErr("list contacts", err)
	}
	defer rows.Close()

	var list []*entity.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, storeErr("scan contact", err)
		}
		list = append(list, c)
	}
	return list, storeErr("list contacts", rows.Err())
}

// Update persiste los campos editables. Fuera del scope → domain.ErrNotFound.
func (r *ContactRepo) Update(ctx context.Context, scope tenancy.Scope, contact *entity.Contact) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var w where
	set := `type = ` + w.arg(contact.Type) +
		`, name = ` + w.arg(contact.Name) +
		`, email = ` + w.arg(contact.Email) +
		`, phone = ` + w.arg(contact.Phone) +
		`, address = ` + w.arg(contact.Address) +
		`, updated_at = ` + w.arg(contact.UpdatedAt)
	w.add("id = " + w.arg(contact.ID))
	w.scope(scope)
	tag, err := r.q.Exec(ctx, `UPDATE contacts SET `+set+w.String(), w.args...)
	if err != nil {
		return storeErr("update contact", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive borrado lógico / restauración.
func (r *ContactRepo) SetActive(ctx context.Context, scope tenancy.Scope, id string, active bool, at time.Time) error {
	return setActive(ctx, r.q, r.timeout, "contacts", scope, id, active, at)
}

// setActive cambia is_active de una fila dentro del scope.
func setActive(ctx context.Context, q Querier, timeout time.Duration, table string, scope tenancy.Scope, id string, active bool, at time.Time) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	var w where
	set := `is_active = ` + w.arg(active) + `, updated_at = ` + w.arg(at)
	w.add("id = " + w.arg(id))
	w.scope(scope)
	tag, err := q.Exec(ctx, `UPDATE `+table+` SET `+set+w.String(), w.args...)
	if err != nil {
		return storeErr("set active "+table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
