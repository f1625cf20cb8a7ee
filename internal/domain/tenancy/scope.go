// Package tenancy construye el predicado de alcance (empresa + activos) que toda
// consulta sobre colecciones de un tenant debe aplicar.
package tenancy

import (
	"strings"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

// Scope conjunción de restricciones derivadas del principal. El valor cero no
// permite nada: solo Build produce scopes utilizables.
type Scope struct {
	companyID  string
	global     bool
	activeOnly bool
}

type options struct {
	targetCompany   string
	includeInactive bool
}

// Option ajusta la construcción del Scope.
type Option func(*options)

// WithTargetCompany fija la empresa objetivo. Solo tiene efecto para super-admin
// (p. ej. crear un registro en nombre de una empresa); para el resto manda la empresa de la sesión.
func WithTargetCompany(companyID string) Option {
	return func(o *options) { o.targetCompany = strings.TrimSpace(companyID) }
}

// IncludeInactive desactiva el filtro isActive. Solo para operaciones que cambian el propio flag (borrado/restauración).
func IncludeInactive() Option {
	return func(o *options) { o.includeInactive = true }
}

// Build deriva el Scope del principal.
//   - sin sesión: domain.ErrUnauthenticated
//   - super-admin: alcance global salvo empresa objetivo explícita
//   - resto: companyId del principal; si falta, domain.ErrNoCompany
func Build(p entity.Principal, opts ...Option) (Scope, error) {
	if !p.IsLoggedIn {
		return Scope{}, domain.ErrUnauthenticated
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := Scope{activeOnly: !o.includeInactive}
	if p.Role == entity.RoleSuperAdmin {
		if o.targetCompany != "" {
			s.companyID = o.targetCompany
		} else {
			s.global = true
		}
		return s, nil
	}
	if p.CompanyID == "" {
		return Scope{}, domain.ErrNoCompany
	}
	s.companyID = p.CompanyID
	return s, nil
}

// CompanyID empresa a la que se restringe el scope ("" si es global).
func (s Scope) CompanyID() string { return s.companyID }

// IsGlobal indica ausencia de restricción por empresa.
func (s Scope) IsGlobal() bool { return s.global }

// ActiveOnly indica si se filtra isActive = true.
func (s Scope) ActiveOnly() bool { return s.activeOnly }

// Valid informa si el scope fue construido por Build.
func (s Scope) Valid() bool { return s.global || s.companyID != "" }

// Allows evalúa el predicado sobre un registro concreto.
func (s Scope) Allows(companyID string, isActive bool) bool {
	if !s.Valid() {
		return false
	}
	if !s.global && companyID != s.companyID {
		return false
	}
	if s.activeOnly && !isActive {
		return false
	}
	return true
}

// OwnerCompany empresa dueña de un registro nuevo. Un scope global no tiene dueño:
// el super-admin debe indicar la empresa.
func (s Scope) OwnerCompany() (string, error) {
	if s.companyID == "" {
		return "", domain.Invalid("companyId es requerido")
	}
	return s.companyID, nil
}

// Search filtro de texto libre. Se aplica como OR sobre un conjunto fijo de campos
// definido por cada recurso y siempre en AND con el Scope.
type Search struct {
	Term string
}

// NewSearch normaliza el término (espacios).
func NewSearch(term string) Search {
	return Search{Term: strings.TrimSpace(term)}
}

// Empty indica que no hay filtro de texto.
func (s Search) Empty() bool { return s.Term == "" }

// MatchesAny coincidencia por subcadena sin distinguir mayúsculas en alguno de los valores.
func (s Search) MatchesAny(values ...string) bool {
	if s.Empty() {
		return true
	}
	needle := strings.ToLower(s.Term)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
