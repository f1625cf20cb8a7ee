// Package redis implementa el almacén de sesiones revocadas sobre Redis, compartido
// entre réplicas de la API.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/erp-suite/internal/application/auth"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

var _ auth.RevocationStore = (*RevocationStore)(nil)

const defaultPrefix = "erp:session:"

// RevocationStore revocaciones por jti y por usuario con expiración nativa de Redis.
type RevocationStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewClient abre un cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewRevocationStore construye el almacén sobre un cliente existente.
func NewRevocationStore(client goredis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client, prefix: defaultPrefix}
}

func (s *RevocationStore) jtiKey(jti string) string     { return s.prefix + "jti:" + jti }
func (s *RevocationStore) userKey(userID string) string { return s.prefix + "user:" + userID }

func redisErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// RevokeToken guarda el jti con TTL hasta la expiración del token. Un token ya vencido no se guarda.
func (s *RevocationStore) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.jtiKey(jti), "1", ttl).Err(); err != nil {
		return redisErr("revocar token", err)
	}
	return nil
}

// IsTokenRevoked informa si el jti está en la lista.
func (s *RevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.jtiKey(jti)).Result()
	if err != nil {
		return false, redisErr("consultar token revocado", err)
	}
	return n > 0, nil
}

// RevokeUser guarda la marca (unix ms) con TTL igual a la vigencia máxima de una sesión.
func (s *RevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.userKey(userID), at.UnixMilli(), ttl).Err(); err != nil {
		return redisErr("revocar sesiones de usuario", err)
	}
	return nil
}

// UserRevokedAt lee la marca del usuario.
func (s *RevocationStore) UserRevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, redisErr("consultar revocación de usuario", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("marca de revocación inválida %q: %w", raw, err)
	}
	return time.UnixMilli(ms), true, nil
}
