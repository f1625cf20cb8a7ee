package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/erp-suite/internal/app"
	"github.com/jhoicas/erp-suite/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/erp-suite/internal/interfaces/http"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := app.OpenRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer repos.Close()

	revocations, closeRevocations, err := app.OpenRevocations(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeRevocations()

	appMetrics := metrics.New("erp")
	svc := app.NewServices(cfg, repos, revocations, appMetrics, log)

	// En memoria no hay otro proceso que siembre el primer super-admin.
	if cfg.Store.Driver == config.StoreDriverMemory {
		if _, err := app.EnsureAdmin(ctx, svc.Users, cfg.Seed, log); err != nil {
			log.Fatal().Err(err).Msg("sembrar super-admin")
		}
	}

	server := httpRouter.NewApp(httpRouter.AppConfig{
		Name:    cfg.App.Name,
		Logger:  log.Named("http"),
		Metrics: appMetrics,
	})
	httpRouter.Router(server, httpRouter.RouterDeps{
		AuthUC:     svc.Auth,
		CompanyUC:  svc.Companies,
		UserUC:     svc.Users,
		ContactUC:  svc.Contacts,
		ProductUC:  svc.Products,
		InvoiceUC:  svc.Invoices,
		DocumentUC: svc.Documents,
		Cookie: httpRouter.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.App.IsProduction(),
		},
		Metrics:     appMetrics,
		Health:      repos.Ping,
		SwaggerFile: "./docs/swagger.json",
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
