package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/application/dto"
)

// SalesHandler facturas de venta (módulo sales).
type SalesHandler struct {
	invoices  *billing.InvoiceUseCase
	documents *billing.DocumentUseCase
}

// NewSalesHandler construye el handler. documents puede ser nil si no se exponen PDF/XML.
func NewSalesHandler(invoices *billing.InvoiceUseCase, documents *billing.DocumentUseCase) *SalesHandler {
	return &SalesHandler{invoices: invoices, documents: documents}
}

// List godoc
// @Summary      Listar facturas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "unpaid | partially_paid | paid"
// @Param        search  query  string  false  "número, nombre o email del cliente"
// @Param        limit   query  int     false  "máximo 500"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200     {object}  dto.Envelope{data=[]dto.InvoiceResponse}
// @Failure      403     {object}  dto.Envelope
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	var in dto.InvoiceFilter
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.List(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Create godoc
// @Summary      Emitir factura
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "cliente, líneas y vencimiento"
// @Success      200   {object}  dto.Envelope{data=dto.CreateInvoiceResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      403   {object}  dto.Envelope
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Get godoc
// @Summary      Obtener factura
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.Envelope{data=dto.InvoiceResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) Get(c *fiber.Ctx) error {
	out, err := h.invoices.Get(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Update godoc
// @Summary      Registrar pago / editar notas y vencimiento
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceRequest  true  "paidAmount, notes, dueDate"
// @Success      200   {object}  dto.Envelope{data=dto.InvoiceResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales/{id} [put]
func (h *SalesHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Delete godoc
// @Summary      Anular factura (borrado lógico)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [delete]
func (h *SalesHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoices.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "factura eliminada"})
}

// Payments godoc
// @Summary      Bitácora de pagos de una factura
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.Envelope{data=[]dto.PaymentEventResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/payments [get]
func (h *SalesHandler) Payments(c *fiber.Ctx) error {
	out, err := h.invoices.Payments(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// PDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/pdf [get]
func (h *SalesHandler) PDF(c *fiber.Ctx) error {
	if h.documents == nil {
		return fiber.ErrNotFound
	}
	content, filename, err := h.documents.DownloadPDF(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(content)
}

// XML godoc
// @Summary      Exportar la factura como XML UBL 2.1 canónico
// @Description  El header Digest lleva el SHA-256 (base64) del contenido.
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/xml [get]
func (h *SalesHandler) XML(c *fiber.Ctx) error {
	if h.documents == nil {
		return fiber.ErrNotFound
	}
	doc, filename, err := h.documents.ExportXML(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set("Digest", "sha-256="+doc.Digest)
	return c.Send(doc.Content)
}
