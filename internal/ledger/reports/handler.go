package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires the read-only report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.trialBalance)
	r.Get("/reports/profit-loss", h.profitLoss)
	r.Get("/reports/balance-sheet", h.balanceSheet)
	r.Get("/reports/cash-flow", h.cashFlow)
	r.Get("/reports/day-book", h.dayBook)
}

func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (int64, time.Time, bool) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, time.Time{}, false
	}
	asOf, err := httpx.QueryDate(r, "as_of")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, time.Time{}, false
	}
	if asOf == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		asOf = &today
	}
	return companyID, *asOf, true
}

func (h *Handler) window(w http.ResponseWriter, r *http.Request) (int64, time.Time, time.Time, bool) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, time.Time{}, time.Time{}, false
	}
	from, err := httpx.RequireQueryDate(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, time.Time{}, time.Time{}, false
	}
	to, err := httpx.RequireQueryDate(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to precedes from")
		return 0, time.Time{}, time.Time{}, false
	}
	return companyID, from, to, true
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	companyID, from, to, ok := h.window(w, r)
	if !ok {
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), companyID, from, to)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	companyID, from, to, ok := h.window(w, r)
	if !ok {
		return
	}
	cf, err := h.service.CashFlow(r.Context(), companyID, from, to)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cf)
}

func (h *Handler) dayBook(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	date, err := httpx.RequireQueryDate(r, "date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	book, err := h.service.DayBook(r.Context(), companyID, date)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}
