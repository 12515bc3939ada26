package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/sacco-suite/coop_core_app/internal/core/services"
	"github.com/sacco-suite/coop_core_app/internal/handlers"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
	"github.com/sacco-suite/coop_core_app/internal/platform/config"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
	"github.com/sacco-suite/coop_core_app/internal/repositories/database/pgsql"
	"github.com/sacco-suite/coop_core_app/pkg/database"

	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Coop Core API
// @version 1.0
// @description Cooperative savings and loan management backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Event publisher; a nil client disables publishing.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, event publishing disabled", slog.String("error", err.Error()))
			redisClient = nil
		}
	}
	publisher := events.NewPublisher(redisClient)

	repos := pgsql.NewRepositories(dbPool)
	svcs := buildServices(repos, publisher, cfg)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimitSpec)
	if err != nil {
		logger.Error("Invalid rate limit spec", slog.String("spec", cfg.RateLimitSpec), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, svcs)

	// Scheduled interest & penalty scan. The scan is idempotent for a given
	// day and resumes from the last committed account after a crash.
	scanCtx, cancelScans := context.WithCancel(context.Background())
	defer cancelScans()
	go runAccrualScans(scanCtx, svcs.Accrual, cfg.AccrualScanInterval, logger)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildServices(repos portsrepo.Repositories, publisher *events.Publisher, cfg *config.Config) *portssvc.Services {
	return &portssvc.Services{
		Member:      services.NewMemberService(repos.Member),
		Product:     services.NewProductService(repos.Product),
		Account:     services.NewAccountService(repos.Member, repos.Product, repos.Savings, repos.Loan),
		Transaction: services.NewTransactionService(repos, publisher, cfg.WithdrawalApprovalThreshold, cfg.Overpayment),
		Ledger:      services.NewLedgerService(repos.Ledger),
		Loan:        services.NewLoanService(repos, services.NewWeightedRiskScorer(), publisher),
		Approval:    services.NewApprovalService(repos, publisher),
		Accrual:     services.NewAccrualService(repos, publisher, cfg.DefaultGraceDays, cfg.AccrualBatchSize),
	}
}

// runMigrations applies pending schema migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
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

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// runAccrualScans runs the accrual engine on a fixed interval until ctx is
// cancelled. One scan runs immediately on startup to catch up after downtime.
func runAccrualScans(ctx context.Context, accrual portssvc.AccrualSvcFacade, interval time.Duration, logger *slog.Logger) {
	scanLogger := logger.With(slog.String("component", "accrual_scan"))
	runOnce := func() {
		scanCtx := middleware.ContextWithLogger(ctx, scanLogger)
		if _, err := accrual.RunScan(scanCtx, time.Now().UTC()); err != nil {
			scanLogger.Error("Accrual scan failed", slog.String("error", err.Error()))
		}
	}

	runOnce()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
