package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
)

// ContactHandler clientes y proveedores (módulo crm).
type ContactHandler struct {
	uc *usecase.ContactUseCase
}

// NewContactHandler construye el handler.
func NewContactHandler(uc *usecase.ContactUseCase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

// List godoc
// @Summary      Listar contactos
// @Tags         contacts
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "customer | supplier"
// @Param        search  query  string  false  "nombre, email o teléfono"
// @Success      200     {object}  dto.Envelope{data=[]dto.ContactResponse}
// @Router       /api/contacts [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	var in dto.ContactFilter
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Create godoc
// @Summary      Crear contacto
// @Tags         contacts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContactRequest  true  "Datos del contacto"
// @Success      200   {object}  dto.Envelope{data=dto.ContactResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /api/contacts [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContactRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Get godoc
// @Summary      Obtener contacto
// @Tags         contacts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contacto"
// @Success      200  {object}  dto.Envelope{data=dto.ContactResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/contacts/{id} [get]
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Update godoc
// @Summary      Actualizar contacto
// @Tags         contacts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del contacto"
// @Param        body  body  dto.UpdateContactRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.ContactResponse}
// @Router       /api/contacts/{id} [put]
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateContactRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Delete godoc
// @Summary      Eliminar contacto (borrado lógico)
// @Tags         contacts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contacto"
// @Success      200  {object}  dto.Envelope
// @Router       /api/contacts/{id} [delete]
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "contacto eliminado"})
}
