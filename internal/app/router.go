package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-erp/meridian-ledger/internal/audit"
	"github.com/meridian-erp/meridian-ledger/internal/bills"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/balances"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/periods"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/reports"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/vouchers"
	"github.com/meridian-erp/meridian-ledger/internal/observability"
	"github.com/meridian-erp/meridian-ledger/internal/recurring"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AccountsHandler  *accounts.Handler
	JournalsHandler  *journals.Handler
	BalancesHandler  *balances.Handler
	PeriodsHandler   *periods.Handler
	VouchersHandler  *vouchers.Handler
	BillsHandler     *bills.Handler
	ReportsHandler   *reports.Handler
	RecurringHandler *recurring.Handler
	AuditHandler     *audit.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router. All ledger routes live under a
// company scope so tenancy is explicit in every URL.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/companies/{companyID}", func(r chi.Router) {
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(r)
		}
		if params.JournalsHandler != nil {
			params.JournalsHandler.MountRoutes(r)
		}
		if params.BalancesHandler != nil {
			params.BalancesHandler.MountRoutes(r)
		}
		if params.PeriodsHandler != nil {
			params.PeriodsHandler.MountRoutes(r)
		}
		if params.VouchersHandler != nil {
			params.VouchersHandler.MountRoutes(r)
		}
		if params.BillsHandler != nil {
			params.BillsHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.RecurringHandler != nil {
			params.RecurringHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
