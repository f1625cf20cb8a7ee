package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

// Códigos de error del envelope.
const (
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicate          = "DUPLICATE"
	CodeStoreTimeout       = "STORE_TIMEOUT"
	CodeInternal           = "INTERNAL"
)

type httpError struct {
	status  int
	code    string
	message string
}

// classify traduce un error a estado HTTP, código y mensaje público.
// Los errores no reconocidos nunca exponen su causa.
func classify(err error) httpError {
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return httpError{fiber.StatusForbidden, CodeAuthRequired, "inicie sesión para continuar"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return httpError{fiber.StatusForbidden, CodeInvalidCredentials, "email o contraseña incorrectos"}
	case errors.Is(err, domain.ErrNoCompany):
		return httpError{fiber.StatusForbidden, CodeForbidden, detail(err, domain.ErrForbidden)}
	case errors.Is(err, domain.ErrForbidden):
		return httpError{fiber.StatusForbidden, CodeForbidden, "acceso denegado"}
	case errors.Is(err, domain.ErrInvalidInput):
		return httpError{fiber.StatusBadRequest, CodeValidation, detail(err, domain.ErrInvalidInput)}
	case errors.Is(err, domain.ErrNotFound):
		return httpError{fiber.StatusNotFound, CodeNotFound, "recurso no encontrado"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return httpError{fiber.StatusBadRequest, CodeDuplicate, detail(domain.ErrEmailAlreadyExists, domain.ErrDuplicate)}
	case errors.Is(err, domain.ErrDuplicate):
		return httpError{fiber.StatusBadRequest, CodeDuplicate, "el registro ya existe"}
	case errors.Is(err, domain.ErrTimeout):
		return httpError{fiber.StatusServiceUnavailable, CodeStoreTimeout, "el almacenamiento no respondió a tiempo, reintente"}
	case errors.As(err, &fe):
		return fiberError(fe)
	}
	return httpError{fiber.StatusInternalServerError, CodeInternal, "error interno"}
}

func fiberError(fe *fiber.Error) httpError {
	switch fe.Code {
	case fiber.StatusNotFound:
		return httpError{fe.Code, CodeNotFound, "ruta no encontrada"}
	case fiber.StatusMethodNotAllowed:
		return httpError{fe.Code, CodeNotFound, "método no permitido"}
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return httpError{fe.Code, CodeValidation, fe.Message}
	}
	if fe.Code >= 500 {
		return httpError{fe.Code, CodeInternal, "error interno"}
	}
	return httpError{fe.Code, CodeForbidden, fe.Message}
}

// detail mensaje legible sin el prefijo del error base ("entrada inválida: x" → "x").
func detail(err, base error) string {
	msg := err.Error()
	prefix := base.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return base.Error()
}

// ErrorHandler convierte cualquier error devuelto por un handler en el envelope
// {success:false, code, message}. Los 5xx se registran con request id, usuario y ruta.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		he := classify(err)
		if he.status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("user_id", PrincipalFrom(c).UserID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", he.status).
				Msg("error atendiendo petición")
		}
		return c.Status(he.status).JSON(dto.Fail(he.code, he.message))
	}
}
