package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/questforge/treasury/internal/adapters/cache"
	"github.com/questforge/treasury/internal/adapters/database/pgsql"
	"github.com/questforge/treasury/internal/adapters/database/sqlite"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/questforge/treasury/internal/handlers"
	"github.com/questforge/treasury/internal/middleware"
	"github.com/questforge/treasury/internal/platform/config"
	"github.com/questforge/treasury/pkg/database"
	"github.com/questforge/treasury/pkg/registry"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo, cleanup, err := openLedgerRepository(cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	// Shared economy state: one cache, one currency registry, one service
	// table per process.
	balanceCache := cache.NewAttributeCache()
	currencyRegistry := services.NewCurrencyRegistry(balanceCache, logger)

	currenciesFile, err := config.LoadCurrencies(cfg.CurrenciesFile)
	if err != nil {
		logger.Error("Failed to load currency configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, cc := range currenciesFile.Currencies {
		// Duplicate ids in the file are a packaging mistake; refuse to start.
		if err := currencyRegistry.Register(cc.ToDomain()); err != nil {
			logger.Error("Failed to register currency", slog.String("currency_id", cc.ID), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if currenciesFile.DefaultCurrency != "" {
		if err := currencyRegistry.SetDefault(currenciesFile.DefaultCurrency); err != nil {
			logger.Error("Configured default currency is not registered", slog.String("currency_id", currenciesFile.DefaultCurrency))
			os.Exit(1)
		}
	}

	container := services.NewServiceContainer(repo, balanceCache, currencyRegistry, currenciesFile.TransactionLogging)

	serviceTable := registry.New()
	serviceTable.OnActivate(services.EconomyServiceCategory, func() {
		logger.Info("Economy service category activated")
	})
	serviceTable.Register(services.EconomyServiceCategory, services.TreasuryOwnerID, container.Economy, registry.PriorityNormal)
	defer serviceTable.Shutdown()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))

	handlers.RegisterRoutes(r, cfg, container, serviceTable)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("driver", cfg.DatabaseDriver),
		slog.Int("currencies", len(currenciesFile.Currencies)),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openLedgerRepository opens the configured durable backend and, for
// Postgres, applies pending migrations first.
func openLedgerRepository(cfg *config.Config, logger *slog.Logger) (portsrepo.LedgerRepository, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if err := runPostgresMigrations(cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewPgxLedgerRepository(pool), pool.Close, nil
	default:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("SQLite ledger opened.", slog.String("path", cfg.SQLitePath))
		return repo, func() { _ = repo.Close() }, nil
	}
}

func runPostgresMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
