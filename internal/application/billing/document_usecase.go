package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

// DocumentUseCase genera los documentos descargables de una factura (PDF y XML).
type DocumentUseCase struct {
	invoices    *InvoiceUseCase
	companyRepo repository.CompanyRepository
	pdf         InvoicePDFGenerator
	xml         InvoiceXMLExporter
}

// NewDocumentUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentUseCase(
	invoices *InvoiceUseCase,
	companyRepo repository.CompanyRepository,
	pdf InvoicePDFGenerator,
	xml InvoiceXMLExporter,
) *DocumentUseCase {
	return &DocumentUseCase{invoices: invoices, companyRepo: companyRepo, pdf: pdf, xml: xml}
}

func (uc *DocumentUseCase) load(ctx context.Context, p entity.Principal, invoiceID string) (*entity.Invoice, *entity.Company, error) {
	inv, err := uc.invoices.load(ctx, p, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, nil, fmt.Errorf("documento: obtener empresa: %w", err)
	}
	if company == nil {
		// Factura huérfana: se genera con los datos mínimos.
		company = &entity.Company{ID: inv.CompanyID}
	}
	return inv, company, nil
}

// DownloadPDF genera el PDF de una factura visible para el principal.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o no pertenece a su empresa.
//   - domain.ErrForbidden        sin acceso al módulo de ventas.
func (uc *DocumentUseCase) DownloadPDF(ctx context.Context, p entity.Principal, invoiceID string) ([]byte, string, error) {
	inv, company, err := uc.load(ctx, p, invoiceID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.pdf.GenerateInvoicePDF(ctx, inv, company)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.InvoiceNumber), nil
}

// ExportXML exporta la factura como XML canónico con su digest.
func (uc *DocumentUseCase) ExportXML(ctx context.Context, p entity.Principal, invoiceID string) (*XMLDocument, string, error) {
	inv, company, err := uc.load(ctx, p, invoiceID)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.xml.ExportInvoice(ctx, inv, company)
	if err != nil {
		return nil, "", fmt.Errorf("xml: exportación fallida: %w", err)
	}
	return doc, fmt.Sprintf("factura_%s.xml", inv.InvoiceNumber), nil
}
