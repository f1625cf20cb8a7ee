package postgres

import (
	"fmt"
	"strings"

	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// where acumula condiciones AND con placeholders posicionales ($1, $2, ...).
type where struct {
	conds []string
	args  []any
}

// arg registra un valor y devuelve su placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(cond string) {
	w.conds = append(w.conds, cond)
}

// scope aplica el predicado de tenancy: empresa (si no es global) e is_active.
// Un scope no construido por tenancy.Build no devuelve filas.
func (w *where) scope(s tenancy.Scope) {
	if !s.Valid() {
		w.add("FALSE")
		return
	}
	if !s.IsGlobal() {
		w.add("company_id = " + w.arg(s.CompanyID()))
	}
	if s.ActiveOnly() {
		w.add("is_active = TRUE")
	}
}

// search OR de ILIKE sobre las columnas dadas; el término se busca literal.
func (w *where) search(s tenancy.Search, columns ...string) {
	if s.Empty() || len(columns) == 0 {
		return
	}
	p := w.arg("%" + escapeLike(s.Term) + "%")
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " ILIKE " + p + ` ESCAPE '\'`
	}
	w.add("(" + strings.Join(parts, " OR ") + ")")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page añade LIMIT/OFFSET. Limit 0 no limita.
func (w *where) page(p repository.Page) string {
	var sb strings.Builder
	if p.Limit > 0 {
		sb.WriteString(" LIMIT " + w.arg(p.Limit))
	}
	if p.Offset > 0 {
		sb.WriteString(" OFFSET " + w.arg(p.Offset))
	}
	return sb.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
