package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-erp/meridian-ledger/internal/app"
	"github.com/meridian-erp/meridian-ledger/internal/audit"
	"github.com/meridian-erp/meridian-ledger/internal/bills"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/balances"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/periods"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/reports"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/vouchers"
	"github.com/meridian-erp/meridian-ledger/internal/observability"
	"github.com/meridian-erp/meridian-ledger/internal/platform/cache"
	"github.com/meridian-erp/meridian-ledger/internal/platform/db"
	"github.com/meridian-erp/meridian-ledger/internal/recurring"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	auditLogger := audit.NewLogger(pool)
	auditTimeline := audit.NewTimeline(pool)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo)

	periodsRepo := periods.NewRepository(pool)
	periodsService := periods.NewService(periodsRepo, auditLogger)

	journalsRepo := journals.NewRepository(pool)
	journalsService := journals.NewService(journalsRepo, periodsService, auditLogger)

	balancesRepo := balances.NewRepository(pool)
	balancesService := balances.NewService(balancesRepo, accountsService)

	vouchersService := vouchers.NewService(accountsService, journalsService)

	billsRepo := bills.NewRepository(pool)
	billsService := bills.NewService(billsRepo, auditLogger)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient)

	recurringRepo := recurring.NewRepository(pool)
	recurringService := recurring.NewService(recurringRepo, accountsService, vouchersService, nil)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AccountsHandler:  accounts.NewHandler(logger, accountsService),
		JournalsHandler:  journals.NewHandler(logger, journalsService),
		BalancesHandler:  balances.NewHandler(logger, balancesService),
		PeriodsHandler:   periods.NewHandler(logger, periodsService),
		VouchersHandler:  vouchers.NewHandler(logger, vouchersService),
		BillsHandler:     bills.NewHandler(logger, billsService),
		ReportsHandler:   reports.NewHandler(logger, reportsService),
		RecurringHandler: recurring.NewHandler(logger, recurringService),
		AuditHandler:     audit.NewHandler(logger, auditTimeline),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
