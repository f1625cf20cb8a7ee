package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken token mal formado, con firma incorrecta, expirado o de otro emisor.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Identity datos del usuario que viajan en el token de sesión.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	CompanyID string
	Role      string
	Modules   []string
}

// Claims incluye los claims estándar JWT más la identidad de la sesión.
// El middleware reconstruye el principal sin consultar la DB; el jti permite revocar.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	CompanyID string   `json:"company_id,omitempty"`
	Role      string   `json:"role"`
	Modules   []string `json:"modules"`
}

// Identity devuelve los datos de usuario del token.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Name:      c.Name,
		CompanyID: c.CompanyID,
		Role:      c.Role,
		Modules:   c.Modules,
	}
}

// Generate firma (HS256) un token para la identidad con vigencia ttl.
// Devuelve también los claims emitidos (jti, expiración) para cookies y revocación.
func Generate(secret, issuer string, id Identity, ttl time.Duration, now time.Time) (string, *Claims, error) {
	if secret == "" {
		return "", nil, fmt.Errorf("jwt: secret vacío")
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      id.Name,
		CompanyID: id.CompanyID,
		Role:      id.Role,
		Modules:   id.Modules,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse valida firma, expiración y emisor (si issuer no está vacío) y devuelve los claims.
// Cualquier fallo se reporta como ErrInvalidToken envolviendo la causa.
func Parse(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: claims inválidos", ErrInvalidToken)
	}
	return claims, nil
}
