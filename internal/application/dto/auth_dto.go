package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PrincipalResponse identidad de la sesión actual.
type PrincipalResponse struct {
	UserID         string     `json:"userId"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	CompanyID      string     `json:"companyId,omitempty"`
	Modules        ModulesDTO `json:"modules"`
	EnabledModules []string   `json:"enabledModules"`
	IsLoggedIn     bool       `json:"isLoggedIn"`
}

// LoginResponse token de sesión (además de la cookie) y principal.
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      PrincipalResponse `json:"user"`
}
