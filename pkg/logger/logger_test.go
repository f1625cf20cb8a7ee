package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/pkg/logger"
)

func TestNew_JSONConCamposFijos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "erp-suite", Output: &buf})

	l.Info().Msg("descartado por nivel")
	l.Named("sales").Warn().Str("invoice_id", "inv-1").Msg("regresión de estado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "erp-suite", entry["service"])
	assert.Equal(t, "sales", entry["component"])
	assert.Equal(t, "inv-1", entry["invoice_id"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nada") })
}
