package entity

import "time"

// Role rol global del usuario.
type Role string

// Roles válidos para User.
const (
	RoleSuperAdmin Role = "super-admin"
	RoleOwner      Role = "owner"
	RoleStaff      Role = "staff"
)

// Valid informa si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleStaff:
		return true
	}
	return false
}

// ModuleAccess concesiones por módulo. Un módulo ausente equivale a no concedido.
type ModuleAccess struct {
	CRM       bool `json:"crm"`
	HR        bool `json:"hr"`
	Inventory bool `json:"inventory"`
	Sales     bool `json:"sales"`
}

// Granted devuelve true solo si el módulo es conocido y está concedido explícitamente.
func (m ModuleAccess) Granted(module Module) bool {
	switch module {
	case ModuleCRM:
		return m.CRM
	case ModuleHR:
		return m.HR
	case ModuleInventory:
		return m.Inventory
	case ModuleSales:
		return m.Sales
	default:
		return false
	}
}

// Enabled lista los módulos concedidos en orden de presentación.
func (m ModuleAccess) Enabled() []Module {
	out := make([]Module, 0, len(Modules))
	for _, mod := range Modules {
		if m.Granted(mod) {
			out = append(out, mod)
		}
	}
	return out
}

// ModuleAccessFrom reconstruye las concesiones desde nombres de módulo. Los nombres desconocidos se ignoran.
func ModuleAccessFrom(names []string) ModuleAccess {
	var m ModuleAccess
	for _, n := range names {
		switch Module(n) {
		case ModuleCRM:
			m.CRM = true
		case ModuleHR:
			m.HR = true
		case ModuleInventory:
			m.Inventory = true
		case ModuleSales:
			m.Sales = true
		}
	}
	return m
}

// Names nombres de los módulos concedidos.
func (m ModuleAccess) Names() []string {
	enabled := m.Enabled()
	out := make([]string, len(enabled))
	for i, mod := range enabled {
		out[i] = string(mod)
	}
	return out
}

// User representa un usuario del sistema. CompanyID vacío solo para super-admin.
type User struct {
	ID           string
	CompanyID    string
	Email        string // siempre en minúsculas
	PasswordHash string // bcrypt
	Name         string
	Role         Role
	Modules      ModuleAccess
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
