package dto

import "time"

// ModulesDTO concesión de módulos por usuario.
type ModulesDTO struct {
	CRM       bool `json:"crm"`
	HR        bool `json:"hr"`
	Inventory bool `json:"inventory"`
	Sales     bool `json:"sales"`
}

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
// CompanyID es obligatorio salvo para role super-admin.
type CreateUserRequest struct {
	CompanyID string     `json:"companyId" validate:"required_unless=Role super-admin"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	Role      string     `json:"role" validate:"required,oneof=super-admin owner staff"`
	Modules   ModulesDTO `json:"modules"`
}

// UpdateUserRequest entrada para actualizar un usuario (campos opcionales).
type UpdateUserRequest struct {
	CompanyID *string     `json:"companyId" validate:"omitempty,uuid"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Password  *string     `json:"password" validate:"omitempty,min=8"`
	Name      *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Role      *string     `json:"role" validate:"omitempty,oneof=super-admin owner staff"`
	Modules   *ModulesDTO `json:"modules"`
	IsActive  *bool       `json:"isActive"`
}

// UserFilter query de GET /api/admin/users.
type UserFilter struct {
	CompanyID       string `query:"companyId"`
	Search          string `query:"search"`
	IncludeInactive bool   `query:"includeInactive"`
	PageRequest
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"companyId,omitempty"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Modules   ModulesDTO `json:"modules"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
