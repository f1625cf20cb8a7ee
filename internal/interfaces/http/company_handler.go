package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
)

// CompanyHandler administración de empresas (solo super-admin).
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear empresa
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      200   {object}  dto.Envelope{data=dto.CompanyResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /api/admin/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// GetByID godoc
// @Summary      Obtener empresa
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.Envelope{data=dto.CompanyResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/admin/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// List godoc
// @Summary      Listar empresas
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active | inactive"
// @Param        search  query  string  false  "nombre o email"
// @Success      200     {object}  dto.Envelope{data=[]dto.CompanyResponse}
// @Router       /api/admin/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	var in dto.CompanyFilter
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Update godoc
// @Summary      Actualizar empresa
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la empresa"
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.CompanyResponse}
// @Router       /api/admin/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
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
// @Summary      Desactivar empresa
// @Tags         admin
// @Security     Bearer
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.Envelope
// @Router       /api/admin/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "empresa desactivada"})
}
