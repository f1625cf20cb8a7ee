package entity

import "time"

// Tipos de contacto (CRM).
const (
	ContactTypeCustomer = "customer"
	ContactTypeSupplier = "supplier"
)

// Contact representa un cliente o proveedor de la empresa.
type Contact struct {
	ID        string
	CompanyID string
	Type      string // customer, supplier
	Name      string
	Email     string
	Phone     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// IsCustomer informa si el contacto puede facturarse.
func (c *Contact) IsCustomer() bool {
	return c != nil && c.Type == ContactTypeCustomer
}
