package http

import (
	"context"
	nethttp "net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/erp-suite/internal/application/auth"
	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

// MetricsExporter métricas HTTP más el handler de exposición (/metrics).
type MetricsExporter interface {
	HTTPObserver
	Handler() nethttp.Handler
}

// AppConfig parámetros de construcción de la app Fiber.
type AppConfig struct {
	Name    string
	Logger  *logger.Logger
	Metrics HTTPObserver
}

// NewApp crea la app Fiber con el manejador de errores común y los middlewares base:
// recover, request id y log de peticiones.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(cfg.Logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(cfg.Logger, cfg.Metrics))
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CompanyUC  *usecase.CompanyUseCase
	UserUC     *usecase.UserUseCase
	ContactUC  *usecase.ContactUseCase
	ProductUC  *usecase.ProductUseCase
	InvoiceUC  *billing.InvoiceUseCase
	DocumentUC *billing.DocumentUseCase
	Cookie     SessionCookie

	// Opcionales
	Metrics     MetricsExporter
	Health      func(ctx context.Context) error
	SwaggerFile string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = "erp_session"
	}

	// Swagger UI: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "ERP Suite API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).
					JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api", SessionMiddleware(deps.AuthUC, deps.Cookie.Name))

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authHandler.Me)

	// Ventas
	sales := api.Group("/sales", RequireModule(entity.ModuleSales))
	salesHandler := NewSalesHandler(deps.InvoiceUC, deps.DocumentUC)
	sales.Get("/", salesHandler.List)
	sales.Post("/", salesHandler.Create)
	sales.Get("/:id", salesHandler.Get)
	sales.Put("/:id", salesHandler.Update)
	sales.Delete("/:id", salesHandler.Delete)
	sales.Get("/:id/payments", salesHandler.Payments)
	sales.Get("/:id/pdf", salesHandler.PDF)
	sales.Get("/:id/xml", salesHandler.XML)

	// CRM
	contacts := api.Group("/contacts", RequireModule(entity.ModuleCRM))
	contactHandler := NewContactHandler(deps.ContactUC)
	contacts.Get("/", contactHandler.List)
	contacts.Post("/", contactHandler.Create)
	contacts.Get("/:id", contactHandler.Get)
	contacts.Put("/:id", contactHandler.Update)
	contacts.Delete("/:id", contactHandler.Delete)

	// Inventario
	products := api.Group("/products", RequireModule(entity.ModuleInventory))
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Administración (solo super-admin)
	admin := api.Group("/admin", RequireSuperAdmin())

	companies := admin.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)

	users := admin.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}
