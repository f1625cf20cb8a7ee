package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore revocaciones de sesión en memoria del proceso. Se usa cuando
// no hay Redis configurado; las marcas se pierden al reiniciar.
type RevocationStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	users  map[string]userMark
	now    func() time.Time
}

type userMark struct {
	at      time.Time
	expires time.Time
}

// NewRevocationStore crea el almacén vacío.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		tokens: make(map[string]time.Time),
		users:  make(map[string]userMark),
		now:    time.Now,
	}
}

func (s *RevocationStore) purge(now time.Time) {
	for jti, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, jti)
		}
	}
	for id, m := range s.users {
		if !now.Before(m.expires) {
			delete(s.users, id)
		}
	}
}

// RevokeToken invalida el jti hasta expiresAt.
func (s *RevocationStore) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(s.now())
	s.tokens[jti] = expiresAt
	return nil
}

// IsTokenRevoked informa si el jti fue revocado y aún no expira.
func (s *RevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[jti]
	return ok && s.now().Before(exp), nil
}

// RevokeUser registra la marca de revocación del usuario.
func (s *RevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(s.now())
	s.users[userID] = userMark{at: at, expires: at.Add(ttl)}
	return nil
}

// UserRevokedAt devuelve la marca vigente del usuario.
func (s *RevocationStore) UserRevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	if err := ctxErr(ctx); err != nil {
		return time.Time{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.users[userID]
	if !ok || !s.now().Before(m.expires) {
		return time.Time{}, false, nil
	}
	return m.at, true, nil
}
