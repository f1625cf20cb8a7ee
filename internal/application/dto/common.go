package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-suite/internal/domain"
)

// Montos como números JSON (230.5) en lugar de texto ("230.5").
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Envelope forma común de todas las respuestas.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK respuesta exitosa con datos.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail respuesta de error.
func Fail(code, message string) Envelope {
	return Envelope{Success: false, Code: code, Message: message}
}

// MaxPageLimit tope de registros por página.
const MaxPageLimit = 500

// PageRequest paginación opcional para listados. Limit 0 lista todo.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize corrige valores fuera de rango.
func (p *PageRequest) Normalize() {
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// LenientAmount monto que acepta número o texto. Un valor no numérico se toma como 0.
type LenientAmount decimal.Decimal

// UnmarshalJSON implementa json.Unmarshaler.
func (a *LenientAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		d = decimal.Zero
	}
	*a = LenientAmount(d)
	return nil
}

// Decimal valor como decimal.Decimal.
func (a LenientAmount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate acepta RFC3339 o fecha simple (YYYY-MM-DD), en UTC.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Invalid("%s: fecha inválida %q", field, s)
}
