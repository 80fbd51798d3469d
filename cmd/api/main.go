package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/buildledger/buildledger-backend/config"
	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/bootstrap"
	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/finance"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/reports"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
	"github.com/buildledger/buildledger-backend/internal/storage/s3"
	"github.com/buildledger/buildledger-backend/internal/transactions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.App.LogLevel), Component: "api"})
	logger.Info("starting api", "version", cfg.App.Version, "env", cfg.App.Environment)

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(cfg.Database.DSN)
	if err != nil {
		logger.Error("secondary database connection failed", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := postgres.RunMigrations(cfg.Database.DSN); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		logger.Error("firebase init failed", "error", err)
		os.Exit(1)
	}
	if authClient == nil {
		logger.Warn("authentication disabled, trusting X-User-Id header")
	}

	reportService := buildReports(ctx, cfg, pool, sqlDB, logger)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "buildledger-api",
		Version:        cfg.App.Version,
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestsPerMin: cfg.Server.RequestsPerMin,
		WizardTTL:      cfg.Redis.WizardTTL,
		DB:             pool,
		SQLDB:          sqlDB,
		Redis:          rdb,
		AuthClient:     authClient,
		Reports:        reportService,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

// buildReports wires the snapshot service when object storage is configured;
// without a bucket the reports endpoints still work off the database.
func buildReports(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, sqlDB *sql.DB, logger *log.Logger) *reports.Service {
	projectRepo := projects.NewRepo(pool)
	financeService := finance.NewService(budgets.NewRepo(pool), transactions.NewRepo(pool), logger)
	store := postgres.NewReportStore(sqlDB)

	var exporter *s3.Exporter
	if cfg.Storage.ReportBucket != "" {
		var err error
		exporter, err = s3.NewExporter(ctx, cfg.Storage.Region, cfg.Storage.ReportBucket)
		if err != nil {
			logger.Warn("object storage unavailable, snapshots stay local", "error", err)
		}
	}

	return reports.NewService(projectRepo, financeService, store, exporter, logger)
}
