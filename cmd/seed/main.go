// seed crea el primer super-admin (SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD) y opcionalmente
// carga un catálogo de productos CSV (UTF-8 o ISO-8859-1) para una empresa.
//
// Uso:
//
//	go run ./cmd/seed admin
//	go run ./cmd/seed products --company <id> --file catalogo.csv [--encoding latin1]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-suite/internal/app"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/infrastructure/catalog"
	"github.com/jhoicas/erp-suite/pkg/config"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type productsFlags struct {
	companyID string
	file      string
	encoding  string
	createdBy string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Carga inicial de datos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	admin := &cobra.Command{
		Use:   "admin",
		Short: "Crea el super-admin de SEED_ADMIN_* si no existe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(env *seedEnv) error {
				if !env.cfg.Seed.HasAdmin() {
					return fmt.Errorf("SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD son requeridos")
				}
				_, err := app.EnsureAdmin(cmd.Context(), env.svc.Users, env.cfg.Seed, env.log)
				return err
			})
		},
	}

	var pf productsFlags
	products := &cobra.Command{
		Use:   "products",
		Short: "Importa un catálogo CSV de productos para una empresa",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := catalog.ParseEncoding(pf.encoding)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(env *seedEnv) error {
				return importProducts(cmd.Context(), env, pf, enc)
			})
		},
	}
	products.Flags().StringVar(&pf.companyID, "company", "", "ID de la empresa destino")
	products.Flags().StringVar(&pf.file, "file", "", "ruta del CSV (columnas: sku,name,description,unit,price,cost,stock,min_stock)")
	products.Flags().StringVar(&pf.encoding, "encoding", "auto", "auto | utf8 | latin1")
	products.Flags().StringVar(&pf.createdBy, "created-by", "seed", "valor de createdBy de los productos")
	_ = products.MarkFlagRequired("company")
	_ = products.MarkFlagRequired("file")

	root.AddCommand(admin, products)
	return root
}

type seedEnv struct {
	cfg   *config.Config
	log   *logger.Logger
	repos *app.Repositories
	svc   *app.Services
}

func withServices(ctx context.Context, fn func(env *seedEnv) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: la carga no persiste al terminar el proceso")
	}

	repos, err := app.OpenRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	revocations, closeRevocations, err := app.OpenRevocations(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeRevocations()

	return fn(&seedEnv{
		cfg:   cfg,
		log:   log,
		repos: repos,
		svc:   app.NewServices(cfg, repos, revocations, nil, log),
	})
}

func importProducts(ctx context.Context, env *seedEnv, pf productsFlags, enc catalog.Encoding) error {
	company, err := env.repos.Companies.GetByID(ctx, pf.companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("empresa %s: %w", pf.companyID, domain.ErrNotFound)
	}

	f, err := os.Open(pf.file)
	if err != nil {
		return fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()

	items, err := catalog.ReadProducts(f, enc)
	if err != nil {
		return err
	}
	res, err := env.svc.Products.Import(ctx, company.ID, pf.createdBy, items)
	if err != nil {
		return fmt.Errorf("importar catálogo (creados %d): %w", res.Created, err)
	}
	env.log.Info().
		Str("company_id", company.ID).
		Int("leidos", len(items)).
		Int("creados", res.Created).
		Int("duplicados", res.Duplicated).
		Msg("catálogo importado")
	return nil
}
