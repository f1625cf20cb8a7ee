package auth

import (
	"context"
	"time"
)

// RevocationStore almacena sesiones revocadas. Las implementaciones (Redis, memoria)
// deben ser seguras para uso concurrente y expirar las entradas solas.
type RevocationStore interface {
	// RevokeToken invalida un token (jti) hasta su expiración.
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeUser invalida todos los tokens del usuario emitidos antes de at.
	// La marca se conserva ttl (vigencia máxima de una sesión).
	RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	// UserRevokedAt devuelve la última marca de revocación del usuario, si existe.
	UserRevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}
