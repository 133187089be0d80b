package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-ledger/internal/app"
	jobmetrics "github.com/meridian-erp/meridian-ledger/internal/jobs"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/periods"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/vouchers"
	"github.com/meridian-erp/meridian-ledger/internal/platform/db"
	"github.com/meridian-erp/meridian-ledger/internal/recurring"
	"github.com/meridian-erp/meridian-ledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	periodsService := periods.NewService(periods.NewRepository(pool), nil)
	journalsService := journals.NewService(journals.NewRepository(pool), periodsService, nil)
	vouchersService := vouchers.NewService(accountsService, journalsService)
	recurringService := recurring.NewService(recurring.NewRepository(pool), accountsService, vouchersService, nil)

	recurringRunner := jobs.NewRecurringRunner(pool, recurringService, logger, metrics)
	integrityScanner := jobs.NewGLIntegrityScanner(pool, logger, metrics)

	recurringTask, err := jobs.NewRecurringProcessTask(jobs.RecurringProcessPayload{})
	if err != nil {
		logger.Error("build recurring task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecurringProcess, Handler: recurringRunner.Handle},
			{Type: jobs.TaskGLIntegrity, Handler: integrityScanner.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: fmt.Sprintf("@every %s", cfg.RecurringInterval), Task: recurringTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: jobs.NewGLIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
