package entity

import "time"

// Estados de Company.
const (
	CompanyStatusActive   = "active"
	CompanyStatusInactive = "inactive"
)

// Company representa una organización/tenant del sistema (multi-tenant).
// Todo usuario que no sea super-admin pertenece exactamente a una Company.
type Company struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si la empresa puede operar.
func (c *Company) IsActive() bool {
	return c != nil && c.Status == CompanyStatusActive
}

// Module identifica una capacidad de negocio que se concede por usuario.
type Module string

// Módulos disponibles (deben coincidir con las claves de ModuleAccess).
const (
	ModuleCRM       Module = "crm"
	ModuleHR        Module = "hr"
	ModuleInventory Module = "inventory"
	ModuleSales     Module = "sales"
)

// Modules lista los módulos conocidos en orden de presentación.
var Modules = []Module{ModuleCRM, ModuleHR, ModuleInventory, ModuleSales}
