package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolConfig_UsaConfiguracion(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.internal", Port: 5433, User: "erp", Password: "p@ss", DBName: "erp", SSLMode: "disable",
		MaxConns: 8, MinConns: 1, ConnLifetimeMin: 15, ConnIdleMin: 5,
	}
	pc, err := newPoolConfig(cfg, 750*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 15*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 750*time.Millisecond, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss", pc.ConnConfig.Password)
	assert.Nil(t, pc.ConnConfig.DialFunc, "sin DB_FORCE_IPV4 se usa el dial de pgx")
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_DatabaseURLeIPv4(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL: "postgresql://u:p@127.0.0.1:5432/erp?sslmode=disable",
		MaxConns:    4,
		ForceIPv4:   true,
	}
	pc, err := newPoolConfig(cfg, 0)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.Equal(t, "erp", pc.ConnConfig.Database)
	assert.Equal(t, int32(4), pc.MaxConns)
	assert.NotNil(t, pc.ConnConfig.DialFunc)
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"}, 0)
	assert.Error(t, err)
}

func TestLookupIPv4_Literales(t *testing.T) {
	ip, err := lookupIPv4(context.Background(), "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = lookupIPv4(context.Background(), "::1")
	assert.ErrorIs(t, err, errNoIPv4)
}
