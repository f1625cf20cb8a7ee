// Package app arma el almacenamiento y los casos de uso a partir de la configuración.
// Lo comparten cmd/api y cmd/seed.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-suite/internal/application/auth"
	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/application/usecase"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
	"github.com/jhoicas/erp-suite/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-suite/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/erp-suite/internal/infrastructure/redis"
	"github.com/jhoicas/erp-suite/internal/infrastructure/ubl"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

// Repositories almacenamiento elegido por STORE_DRIVER.
type Repositories struct {
	Companies repository.CompanyRepository
	Users     repository.UserRepository
	Contacts  repository.ContactRepository
	Products  repository.ProductRepository
	Invoices  repository.InvoiceRepository
	Events    repository.PaymentEventRepository
	Tx        billing.SalesTxRunner

	// Ping verifica el almacenamiento (/health).
	Ping  func(ctx context.Context) error
	close func()
}

// Close libera conexiones.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// OpenRepositories abre PostgreSQL (con migración automática si DB_AUTO_MIGRATE) o la memoria del proceso.
func OpenRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return NewMemoryRepositories(), nil
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
}

// NewMemoryRepositories almacenamiento en memoria (desarrollo y tests).
func NewMemoryRepositories() *Repositories {
	s := memory.NewStore()
	return &Repositories{
		Companies: memory.NewCompanyRepository(s),
		Users:     memory.NewUserRepository(s),
		Contacts:  memory.NewContactRepository(s),
		Products:  memory.NewProductRepository(s),
		Invoices:  memory.NewInvoiceRepository(s),
		Events:    memory.NewPaymentEventRepository(s),
		Tx:        memory.NewTxRunner(s),
		Ping:      func(context.Context) error { return nil },
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, error) {
	if cfg.DB.AutoMigrate {
		if err := Migrate(cfg.DB, log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.Store.Timeout(), log)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Store.Timeout()
	return &Repositories{
		Companies: postgres.NewCompanyRepository(pool, timeout),
		Users:     postgres.NewUserRepository(pool, timeout),
		Contacts:  postgres.NewContactRepository(pool, timeout),
		Products:  postgres.NewProductRepository(pool, timeout),
		Invoices:  postgres.NewInvoiceRepository(pool, timeout),
		Events:    postgres.NewPaymentEventRepository(pool, timeout),
		Tx:        postgres.NewTxRunner(pool, timeout),
		Ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}

// Migrate aplica las migraciones embebidas pendientes.
func Migrate(cfg config.DBConfig, log *logger.Logger) error {
	m, err := postgres.NewMigrator(cfg.MigrateURL(), log.Named("migrate"))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	return m.Up()
}

// OpenRevocations Redis si REDIS_ADDR está definido; si no, memoria del proceso (una sola réplica).
func OpenRevocations(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (auth.RevocationStore, func(), error) {
	if !cfg.Enabled() {
		log.Info().Msg("revocación de sesiones en memoria")
		return memory.NewRevocationStore(), func() {}, nil
	}
	client, err := infraredis.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Addr).Msg("revocación de sesiones en redis")
	return infraredis.NewRevocationStore(client), func() { _ = client.Close() }, nil
}

// Services casos de uso listos para el router.
type Services struct {
	Auth      *auth.AuthUseCase
	Companies *usecase.CompanyUseCase
	Users     *usecase.UserUseCase
	Contacts  *usecase.ContactUseCase
	Products  *usecase.ProductUseCase
	Invoices  *billing.InvoiceUseCase
	Documents *billing.DocumentUseCase
}

// NewServices construye los casos de uso. metrics puede ser nil.
func NewServices(cfg *config.Config, repos *Repositories, revocations auth.RevocationStore, metrics billing.Metrics, log *logger.Logger) *Services {
	authUC := auth.NewAuthUseCase(repos.Users, revocations, auth.SessionConfig{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL(),
	})
	invoiceUC := billing.NewInvoiceUseCase(repos.Tx, repos.Invoices, repos.Contacts, repos.Events, metrics, log)
	return &Services{
		Auth:      authUC,
		Companies: usecase.NewCompanyUseCase(repos.Companies),
		Users:     usecase.NewUserUseCase(repos.Users, repos.Companies, authUC, cfg.Auth.BcryptCost),
		Contacts:  usecase.NewContactUseCase(repos.Contacts, repos.Companies),
		Products:  usecase.NewProductUseCase(repos.Products, repos.Companies),
		Invoices:  invoiceUC,
		Documents: billing.NewDocumentUseCase(invoiceUC, repos.Companies, pdf.NewMarotoPDFGenerator(), ubl.NewExporter("COP")),
	}
}

// EnsureAdmin crea el super-admin de SEED_ADMIN_* si aún no existe. Devuelve true si lo creó.
func EnsureAdmin(ctx context.Context, users *usecase.UserUseCase, seed config.SeedConfig, log *logger.Logger) (bool, error) {
	if !seed.HasAdmin() {
		return false, nil
	}
	_, err := users.Bootstrap(ctx, dto.CreateUserRequest{
		Email:    seed.AdminEmail,
		Password: seed.AdminPassword,
		Name:     seed.AdminName,
		Role:     "super-admin",
	})
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Str("email", strings.ToLower(seed.AdminEmail)).Msg("super-admin ya existe")
		return false, nil
	case err != nil:
		return false, fmt.Errorf("crear super-admin: %w", err)
	}
	log.Info().Str("email", strings.ToLower(seed.AdminEmail)).Msg("super-admin creado")
	return true, nil
}
