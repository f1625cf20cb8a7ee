package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	erpredis "github.com/jhoicas/erp-suite/internal/infrastructure/redis"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real: REDIS_ADDR=localhost:6379 go test ./internal/infrastructure/redis/...
func newStore(t *testing.T) *erpredis.RevocationStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR no definido")
	}
	client, err := erpredis.NewClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return erpredis.NewRevocationStore(client)
}

func TestRevocationStore_Token(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := store.IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeToken(ctx, jti, time.Now().Add(time.Minute)))
	revoked, err = store.IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationStore_ExpiredTokenIsNotStored(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	jti := uuid.NewString()

	require.NoError(t, store.RevokeToken(ctx, jti, time.Now().Add(-time.Minute)))
	revoked, err := store.IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_User(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	_, ok, err := store.UserRevokedAt(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.RevokeUser(ctx, userID, at, time.Minute))

	got, ok, err := store.UserRevokedAt(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}
