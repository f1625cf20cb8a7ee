package catalog_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/erp-suite/internal/infrastructure/catalog"
)

func TestReadProducts_UTF8Coma(t *testing.T) {
	in := "\xEF\xBB\xBFsku,name,price,stock,min_stock\n" +
		"W-1,Widget,12.50,3,5\n" +
		"\n" +
		"G-2,\"Gadget, grande\",1000,0,\n"
	items, err := catalog.ReadProducts(strings.NewReader(in), catalog.EncodingAuto)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "W-1", items[0].SKU)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, items[0].MinStock.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "Gadget, grande", items[1].Name)
	assert.True(t, items[1].MinStock.IsZero())
}

func TestReadProducts_Latin1PuntoYComa(t *testing.T) {
	text := "Código;Nombre;Descripción;Precio\nC-1;Café molido;Bolsa 500g;1.234,50\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
	require.NoError(t, err)
	buf := bytes.NewBufferString(latin1)

	for _, enc := range []catalog.Encoding{catalog.EncodingLatin1, catalog.EncodingAuto} {
		items, err := catalog.ReadProducts(bytes.NewReader(buf.Bytes()), enc)
		require.NoError(t, err, enc)
		require.Len(t, items, 1)
		assert.Equal(t, "C-1", items[0].SKU)
		assert.Equal(t, "Café molido", items[0].Name)
		assert.Equal(t, "Bolsa 500g", items[0].Description)
		assert.True(t, items[0].Price.Equal(decimal.RequireFromString("1234.50")), items[0].Price.String())
	}

	_, err = catalog.ReadProducts(bytes.NewReader(buf.Bytes()), catalog.EncodingUTF8)
	assert.ErrorIs(t, err, catalog.ErrInvalidUTF8)
}

func TestReadProducts_Errores(t *testing.T) {
	_, err := catalog.ReadProducts(strings.NewReader("  \n"), catalog.EncodingAuto)
	assert.ErrorIs(t, err, catalog.ErrEmptyFile)

	_, err = catalog.ReadProducts(strings.NewReader("name,price\nX,1\n"), catalog.EncodingAuto)
	assert.ErrorIs(t, err, catalog.ErrMissingHeader)

	_, err = catalog.ReadProducts(strings.NewReader("sku,name,price\nA,Uno,1\nB,Dos,abc\n"), catalog.EncodingAuto)
	var rowErr *catalog.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Line)
	assert.Contains(t, err.Error(), "price")
}

func TestParseEncoding(t *testing.T) {
	enc, err := catalog.ParseEncoding("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, catalog.EncodingLatin1, enc)

	enc, err = catalog.ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, catalog.EncodingAuto, enc)

	_, err = catalog.ParseEncoding("utf-16")
	assert.Error(t, err)
}
