package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthenticated    = errors.New("sesión requerida")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrForbidden          = errors.New("acceso denegado")
	ErrTimeout            = errors.New("tiempo de espera agotado en el almacenamiento")
)

// Variantes que conservan la categoría base para errors.Is.
var (
	ErrNoCompany          = fmt.Errorf("%w: el usuario no está asociado a una empresa", ErrForbidden)
	ErrEmailAlreadyExists = fmt.Errorf("%w: el email ya está registrado", ErrDuplicate)
)

// Invalid construye un error de validación con detalle legible para el cliente.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
