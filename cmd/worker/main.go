package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildledger/buildledger-backend/config"
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
	if len(os.Args) < 2 {
		os.Stderr.WriteString("usage: worker snapshot|schedule\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.App.LogLevel), Component: "worker"})

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

	var exporter *s3.Exporter
	if cfg.Storage.ReportBucket != "" {
		exporter, err = s3.NewExporter(ctx, cfg.Storage.Region, cfg.Storage.ReportBucket)
		if err != nil {
			logger.Warn("object storage unavailable, snapshots stay local", "error", err)
		}
	}

	financeService := finance.NewService(budgets.NewRepo(pool), transactions.NewRepo(pool), logger)
	service := reports.NewService(projects.NewRepo(pool), financeService, postgres.NewReportStore(sqlDB), exporter, logger)

	switch os.Args[1] {
	case "snapshot":
		if err := service.RunSnapshot(ctx); err != nil {
			logger.Error("snapshot run failed", "error", err)
			os.Exit(1)
		}
	case "schedule":
		scheduler := reports.NewScheduler(service, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error("scheduler start failed", "error", err)
			os.Exit(1)
		}
		<-ctx.Done()
		scheduler.Stop()
		logger.Info("worker stopped")
	default:
		logger.Error("unknown command", "command", os.Args[1])
		os.Exit(1)
	}
}
