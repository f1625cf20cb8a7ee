package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/policy"
)

// LocalPrincipal clave de c.Locals con el entity.Principal de la petición.
const LocalPrincipal = "principal"

// PrincipalResolver resuelve un token de sesión. Lo implementa *auth.AuthUseCase.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (entity.Principal, error)
}

// SessionMiddleware carga el principal desde la cookie de sesión o el header
// Authorization: Bearer. Sin credencial, o con una inválida, la petición sigue
// como anónima; la decisión de acceso la toman RequireModule / RequireSuperAdmin.
func SessionMiddleware(resolver PrincipalResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := entity.Anonymous()
		if token := sessionToken(c, cookieName); token != "" {
			p, err := resolver.Resolve(c.UserContext(), token)
			if err != nil {
				return err
			}
			principal = p
		}
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

// sessionToken prioriza el header Bearer sobre la cookie.
func sessionToken(c *fiber.Ctx, cookieName string) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.Cookies(cookieName))
}

// PrincipalFrom devuelve el principal de la petición (anónimo si no pasó por SessionMiddleware).
func PrincipalFrom(c *fiber.Ctx) entity.Principal {
	if p, ok := c.Locals(LocalPrincipal).(entity.Principal); ok {
		return p
	}
	return entity.Anonymous()
}

// RequireModule rechaza la petición si el principal no tiene el módulo concedido.
//   - sin sesión → 403 AUTH_REQUIRED
//   - sin concesión → 403 FORBIDDEN
func RequireModule(module entity.Module) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := policy.Evaluate(PrincipalFrom(c), module).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireSuperAdmin protege las rutas de administración.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := policy.EvaluateSuperAdmin(PrincipalFrom(c)).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}
