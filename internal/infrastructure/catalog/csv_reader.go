// Package catalog lee catálogos de productos en CSV para la carga inicial (cmd/seed).
package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-suite/internal/application/dto"
)

// Encoding codificación del archivo de entrada.
type Encoding string

const (
	EncodingAuto   Encoding = "auto"
	EncodingUTF8   Encoding = "utf8"
	EncodingLatin1 Encoding = "latin1"
)

// ParseEncoding acepta los alias habituales ("utf-8", "iso-8859-1", ...).
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	case "latin1", "iso-8859-1", "iso8859-1", "windows-1252":
		return EncodingLatin1, nil
	}
	return "", fmt.Errorf("codificación no soportada: %q", s)
}

var (
	ErrEmptyFile     = errors.New("archivo vacío")
	ErrMissingHeader = errors.New("falta la columna requerida")
	ErrInvalidUTF8   = errors.New("el archivo no es UTF-8 válido")
)

// Columnas reconocidas. sku y name son obligatorias.
const (
	colSKU         = "sku"
	colName        = "name"
	colDescription = "description"
	colUnit        = "unit"
	colPrice       = "price"
	colCost        = "cost"
	colStock       = "stock"
	colMinStock    = "min_stock"
)

var headerAliases = map[string]string{
	"codigo": colSKU, "código": colSKU, "referencia": colSKU,
	"nombre": colName, "descripcion": colDescription, "descripción": colDescription,
	"unidad": colUnit, "precio": colPrice, "costo": colCost,
	"existencias": colStock, "minstock": colMinStock, "stock_minimo": colMinStock, "stock_mínimo": colMinStock,
}

// RowError error de una fila concreta (número de línea del archivo).
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// ReadProducts decodifica el CSV en solicitudes de creación. El separador (',' o ';')
// se detecta en la cabecera. Las filas vacías se omiten.
func ReadProducts(r io.Reader, enc Encoding) ([]dto.CreateProductRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var src io.Reader = bytes.NewReader(data)
	switch enc {
	case EncodingLatin1:
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return nil, ErrInvalidUTF8
		}
	default:
		if !utf8.Valid(data) {
			src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
		}
	}

	br := bufio.NewReader(src)
	first, _ := br.Peek(1024)
	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(first)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range []string{colSKU, colName} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	var out []dto.CreateProductRequest
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if blank(record) {
			continue
		}
		item, err := toRequest(record, cols)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		out = append(out, item)
	}
	return out, nil
}

func toRequest(record []string, cols map[string]int) (dto.CreateProductRequest, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	item := dto.CreateProductRequest{
		SKU:         get(colSKU),
		Name:        get(colName),
		Description: get(colDescription),
		Unit:        get(colUnit),
	}
	if item.SKU == "" || item.Name == "" {
		return item, errors.New("sku y name son obligatorios")
	}
	var err error
	for _, f := range []struct {
		col string
		dst *decimal.Decimal
	}{
		{colPrice, &item.Price}, {colCost, &item.Cost}, {colStock, &item.Stock}, {colMinStock, &item.MinStock},
	} {
		if *f.dst, err = parseAmount(get(f.col)); err != nil {
			return item, fmt.Errorf("%s: %w", f.col, err)
		}
	}
	return item, nil
}

// parseAmount acepta "1234.5", "1234,5" y "1.234,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("monto inválido %q", s)
	}
	return d, nil
}

func detectDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
