// Package policy es el único punto de decisión de autorización de la aplicación.
// Las funciones son puras: no consultan la base de datos ni modifican el principal.
package policy

import (
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

// DeniedReason motivo de una denegación.
type DeniedReason string

// Motivos de denegación.
const (
	ReasonNone             DeniedReason = ""
	ReasonNotLoggedIn      DeniedReason = "not_logged_in"
	ReasonModuleNotGranted DeniedReason = "module_not_granted"
	ReasonNotSuperAdmin    DeniedReason = "not_super_admin"
)

// Decision resultado de evaluar una política: permitido o denegado con motivo.
type Decision struct {
	Allowed bool
	Reason  DeniedReason
}

// Allow decisión positiva.
func Allow() Decision { return Decision{Allowed: true} }

// Deny decisión negativa con motivo.
func Deny(reason DeniedReason) Decision { return Decision{Reason: reason} }

// Err traduce la decisión a un error de dominio (nil si está permitida).
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonNotLoggedIn {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}

// CanAccess decide si el principal puede usar el módulo. Falla cerrado: sin sesión
// o sin concesión explícita devuelve false. El rol no interviene; un super-admin sin
// la concesión también es rechazado.
func CanAccess(p entity.Principal, module entity.Module) bool {
	if !p.IsLoggedIn {
		return false
	}
	return p.Modules.Granted(module)
}

// Evaluate es la versión con motivo de CanAccess, usada por el middleware de módulos.
func Evaluate(p entity.Principal, module entity.Module) Decision {
	if !p.IsLoggedIn {
		return Deny(ReasonNotLoggedIn)
	}
	if !CanAccess(p, module) {
		return Deny(ReasonModuleNotGranted)
	}
	return Allow()
}

// EvaluateSuperAdmin protege recursos de administración (empresas, usuarios),
// que no dependen de concesiones de módulo.
func EvaluateSuperAdmin(p entity.Principal) Decision {
	if !p.IsLoggedIn {
		return Deny(ReasonNotLoggedIn)
	}
	if p.Role != entity.RoleSuperAdmin {
		return Deny(ReasonNotSuperAdmin)
	}
	return Allow()
}
