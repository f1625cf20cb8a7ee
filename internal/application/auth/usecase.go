package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/pkg/jwt"
)

// SessionConfig configuración para generación de tokens de sesión.
type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Session resultado de un login exitoso.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal entity.Principal
}

// AuthUseCase casos de uso de sesión: login, logout, resolución del principal y revocación.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	revocations RevocationStore
	cfg         SessionConfig
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, revocations RevocationStore, cfg SessionConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, revocations: revocations, cfg: cfg, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// Login verifica email/password de un usuario activo y emite el token de sesión.
// Usuario inexistente, inactivo o password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	p := entity.PrincipalFromUser(user)
	token, claims, err := jwt.Generate(uc.cfg.Secret, uc.cfg.Issuer, jwt.Identity{
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		CompanyID: p.CompanyID,
		Role:      string(p.Role),
		Modules:   p.Modules.Names(),
	}, uc.cfg.TTL, uc.now())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Principal: p}, nil
}

// Logout revoca el token hasta su expiración. Un token ya inválido no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := jwt.Parse(uc.cfg.Secret, uc.cfg.Issuer, token)
	if err != nil {
		return nil
	}
	return uc.revocations.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Resolve convierte el token de la petición en un Principal. Ausente, inválido,
// expirado o revocado equivale a "sin sesión" (Anonymous, nil). Solo los fallos
// del almacén de revocaciones se devuelven como error.
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (entity.Principal, error) {
	if token == "" {
		return entity.Anonymous(), nil
	}
	claims, err := jwt.Parse(uc.cfg.Secret, uc.cfg.Issuer, token)
	if err != nil {
		return entity.Anonymous(), nil
	}

	revoked, err := uc.revocations.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return entity.Anonymous(), err
	}
	if revoked {
		return entity.Anonymous(), nil
	}
	revokedAt, ok, err := uc.revocations.UserRevokedAt(ctx, claims.UserID)
	if err != nil {
		return entity.Anonymous(), err
	}
	// iat tiene resolución de segundos: un token emitido en el mismo segundo de la revocación también cae.
	if ok && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAt.Truncate(time.Second)) {
		return entity.Anonymous(), nil
	}

	return principalFromClaims(claims), nil
}

// RevokeUser invalida todas las sesiones existentes del usuario (cambios de admin).
func (uc *AuthUseCase) RevokeUser(ctx context.Context, userID string) error {
	return uc.revocations.RevokeUser(ctx, userID, uc.now(), uc.cfg.TTL)
}

func principalFromClaims(c *jwt.Claims) entity.Principal {
	role := entity.Role(c.Role)
	if !role.Valid() {
		return entity.Anonymous()
	}
	return entity.Principal{
		UserID:     c.UserID,
		Email:      c.Email,
		Name:       c.Name,
		Role:       role,
		CompanyID:  c.CompanyID,
		Modules:    entity.ModuleAccessFrom(c.Modules),
		IsLoggedIn: true,
	}
}

// ToPrincipalResponse principal para GET /api/auth/me.
func ToPrincipalResponse(p entity.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      string(p.Role),
		CompanyID: p.CompanyID,
		Modules: dto.ModulesDTO{
			CRM:       p.Modules.CRM,
			HR:        p.Modules.HR,
			Inventory: p.Modules.Inventory,
			Sales:     p.Modules.Sales,
		},
		EnabledModules: p.Modules.Names(),
		IsLoggedIn:     p.IsLoggedIn,
	}
}
