package dto

import "time"

// CreateContactRequest entrada para crear un contacto (CRM).
// CompanyID solo lo usa un super-admin para crear en nombre de una empresa.
type CreateContactRequest struct {
	Type      string `json:"type" validate:"required,oneof=customer supplier"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=300"`
	CompanyID string `json:"companyId"`
}

// UpdateContactRequest campos opcionales.
type UpdateContactRequest struct {
	Type    *string `json:"type" validate:"omitempty,oneof=customer supplier"`
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

// ContactFilter query de GET /api/contacts.
type ContactFilter struct {
	Type   string `query:"type" validate:"omitempty,oneof=customer supplier"`
	Search string `query:"search"`
	PageRequest
}

// ContactResponse salida de un contacto.
type ContactResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
}
