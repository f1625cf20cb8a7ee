package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principal(role entity.Role, companyID string) entity.Principal {
	return entity.Principal{IsLoggedIn: true, UserID: "u1", Role: role, CompanyID: companyID}
}

func TestWhere_ScopeCompany(t *testing.T) {
	scope, err := tenancy.Build(principal(entity.RoleOwner, "A"))
	require.NoError(t, err)

	var w where
	w.add("id = " + w.arg("x"))
	w.scope(scope)

	assert.Equal(t, " WHERE id = $1 AND company_id = $2 AND is_active = TRUE", w.String())
	assert.Equal(t, []any{"x", "A"}, w.args)
}

func TestWhere_ScopeGlobalIncludeInactive(t *testing.T) {
	scope, err := tenancy.Build(principal(entity.RoleSuperAdmin, ""), tenancy.IncludeInactive())
	require.NoError(t, err)

	var w where
	w.scope(scope)
	assert.Equal(t, "", w.String())
	assert.Empty(t, w.args)
}

func TestWhere_ZeroScopeMatchesNothing(t *testing.T) {
	var w where
	w.scope(tenancy.Scope{})
	assert.Equal(t, " WHERE FALSE", w.String())
}

func TestWhere_SearchEscapesWildcards(t *testing.T) {
	var w where
	w.search(tenancy.NewSearch(" 50%_off\\ "), "name", "email")

	assert.Equal(t, ` WHERE (name ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\')`, w.String())
	assert.Equal(t, []any{`%50\%\_off\\%`}, w.args)
}

func TestWhere_EmptySearchAddsNothing(t *testing.T) {
	var w where
	w.search(tenancy.NewSearch("   "), "name")
	assert.Equal(t, "", w.String())
}

func TestWhere_Page(t *testing.T) {
	var w where
	w.add("status = " + w.arg("unpaid"))
	assert.Equal(t, " LIMIT $2 OFFSET $3", w.page(repository.Page{Limit: 10, Offset: 20}))
	assert.Equal(t, []any{"unpaid", 10, 20}, w.args)

	var all where
	assert.Equal(t, "", all.page(repository.Page{}))
}

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr("op", nil))

	err := storeErr("insert", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = storeErr("insert contact", &pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "referencia inexistente")

	err = storeErr("get", fmt.Errorf("wrap: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrTimeout)

	base := errors.New("boom")
	err = storeErr("list", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "list")
}

func TestSelectInvoice_ForUpdate(t *testing.T) {
	scope, err := tenancy.Build(principal(entity.RoleOwner, "A"))
	require.NoError(t, err)

	plain, args := selectInvoice(scope, "inv-1", false)
	assert.NotContains(t, plain, "FOR UPDATE")
	assert.Equal(t, []any{"inv-1", "A"}, args)

	locked, args := selectInvoice(scope, "inv-1", true)
	assert.True(t, strings.HasSuffix(locked, " WHERE id = $1 AND company_id = $2 AND is_active = TRUE FOR UPDATE"))
	assert.Equal(t, []any{"inv-1", "A"}, args)
}
