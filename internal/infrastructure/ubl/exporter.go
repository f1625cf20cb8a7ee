// Package ubl exporta facturas de venta como documentos UBL 2.1 (Invoice) en forma
// canónica C14N, con digest SHA-256 del contenido.
package ubl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	ublVersion          = "UBL 2.1"
	invoiceTypeCode     = "380" // factura comercial (UNCL1001)
	defaultCurrencyCode = "COP"
)

var _ billing.InvoiceXMLExporter = (*Exporter)(nil)

// Exporter implementa billing.InvoiceXMLExporter.
type Exporter struct {
	currency string
}

// NewExporter construye el exportador. currency vacío usa COP.
func NewExporter(currency string) *Exporter {
	if currency == "" {
		currency = defaultCurrencyCode
	}
	return &Exporter{currency: currency}
}

// ExportInvoice genera el XML canónico y su digest.
func (e *Exporter) ExportInvoice(ctx context.Context, inv *entity.Invoice, company *entity.Company) (*billing.XMLDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv == nil || company == nil {
		return nil, fmt.Errorf("ubl: factura y empresa son requeridas")
	}

	raw, err := e.build(inv, company).WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return nil, fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return &billing.XMLDocument{
		Content: canonical,
		Digest:  base64.StdEncoding.EncodeToString(sum[:]),
	}, nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func (e *Exporter) build(inv *entity.Invoice, company *entity.Company) *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "UBLVersionID", ublVersion)
	cbc(root, "ID", inv.InvoiceNumber)
	cbc(root, "UUID", inv.ID)
	cbc(root, "IssueDate", inv.IssueDate.UTC().Format("2006-01-02"))
	cbc(root, "IssueTime", inv.IssueDate.UTC().Format("15:04:05Z"))
	cbc(root, "DueDate", inv.DueDate.UTC().Format("2006-01-02"))
	cbc(root, "InvoiceTypeCode", invoiceTypeCode)
	if inv.Notes != "" {
		cbc(root, "Note", inv.Notes)
	}
	cbc(root, "DocumentCurrencyCode", e.currency)
	cbc(root, "LineCountNumeric", fmt.Sprint(len(inv.LineItems)))

	// ── Emisor ──
	supplier := root.CreateElement("cac:AccountingSupplierParty").CreateElement("cac:Party")
	party(supplier, company.ID, company.Name, company.Email, company.Phone, company.Address)

	// ── Cliente ──
	customer := root.CreateElement("cac:AccountingCustomerParty").CreateElement("cac:Party")
	party(customer, inv.CustomerID, inv.CustomerName, inv.CustomerEmail, "", "")

	// ── Pagos ──
	if inv.PaidAmount.IsPositive() {
		prepaid := root.CreateElement("cac:PrepaidPayment")
		cbc(prepaid, "ID", string(inv.Status))
		e.amount(prepaid, "PaidAmount", inv.PaidAmount)
	}

	// ── Impuestos ──
	taxTotal := root.CreateElement("cac:TaxTotal")
	e.amount(taxTotal, "TaxAmount", inv.TotalTax)

	// ── Totales ──
	monetary := root.CreateElement("cac:LegalMonetaryTotal")
	e.amount(monetary, "LineExtensionAmount", inv.Subtotal)
	e.amount(monetary, "TaxExclusiveAmount", inv.Subtotal)
	e.amount(monetary, "TaxInclusiveAmount", inv.GrandTotal)
	e.amount(monetary, "PrepaidAmount", inv.PaidAmount)
	e.amount(monetary, "PayableAmount", inv.RemainingAmount)

	// ── Líneas ──
	for i, li := range inv.LineItems {
		e.line(root, i+1, li)
	}
	return doc
}

func (e *Exporter) line(root *etree.Element, n int, li entity.LineItem) {
	sub := li.Quantity.Mul(li.UnitPrice)
	tax := li.Total.Sub(sub)

	el := root.CreateElement("cac:InvoiceLine")
	cbc(el, "ID", fmt.Sprint(n))
	qty := cbc(el, "InvoicedQuantity", li.Quantity.String())
	qty.CreateAttr("unitCode", "EA")
	e.amount(el, "LineExtensionAmount", sub)

	taxTotal := el.CreateElement("cac:TaxTotal")
	e.amount(taxTotal, "TaxAmount", tax)
	subtotal := taxTotal.CreateElement("cac:TaxSubtotal")
	e.amount(subtotal, "TaxableAmount", sub)
	e.amount(subtotal, "TaxAmount", tax)
	cbc(subtotal.CreateElement("cac:TaxCategory"), "Percent", li.TaxPercent.StringFixed(2))

	cbc(el.CreateElement("cac:Item"), "Description", li.ProductName)
	e.amount(el.CreateElement("cac:Price"), "PriceAmount", li.UnitPrice)
}

func party(el *etree.Element, id, name, email, phone, address string) {
	cbc(el.CreateElement("cac:PartyIdentification"), "ID", id)
	cbc(el.CreateElement("cac:PartyName"), "Name", name)
	if address != "" {
		addr := el.CreateElement("cac:PostalAddress").CreateElement("cac:AddressLine")
		cbc(addr, "Line", address)
	}
	if email != "" || phone != "" {
		contact := el.CreateElement("cac:Contact")
		if phone != "" {
			cbc(contact, "Telephone", phone)
		}
		if email != "" {
			cbc(contact, "ElectronicMail", email)
		}
	}
}

func cbc(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + tag)
	el.SetText(value)
	return el
}

func (e *Exporter) amount(parent *etree.Element, tag string, d decimal.Decimal) {
	cbc(parent, tag, d.StringFixed(2)).CreateAttr("currencyID", e.currency)
}
