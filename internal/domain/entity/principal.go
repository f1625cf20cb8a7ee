package entity

// Principal es la identidad autenticada de una petición: usuario, rol, empresa y módulos.
// Se construye una vez por petición a partir de la sesión y no se modifica después.
type Principal struct {
	UserID     string
	Email      string
	Name       string
	Role       Role
	CompanyID  string
	Modules    ModuleAccess
	IsLoggedIn bool
}

// Anonymous devuelve el principal de una petición sin sesión válida.
func Anonymous() Principal {
	return Principal{Role: RoleStaff}
}

// PrincipalFromUser construye el principal de un usuario recién autenticado.
func PrincipalFromUser(u *User) Principal {
	return Principal{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		CompanyID:  u.CompanyID,
		Modules:    u.Modules,
		IsLoggedIn: true,
	}
}

// IsSuperAdmin informa si el principal tiene alcance global.
func (p Principal) IsSuperAdmin() bool {
	return p.IsLoggedIn && p.Role == RoleSuperAdmin
}

// IsOwner informa si el principal es dueño de su empresa.
func (p Principal) IsOwner() bool {
	return p.IsLoggedIn && p.Role == RoleOwner
}
