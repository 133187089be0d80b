package balances

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires the read-side balance and ledger endpoints.
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
	r.Get("/accounts/{id}/balance", h.balance)
	r.Get("/accounts/{id}/ledger", h.ledger)
	r.Get("/balances", h.batch)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := httpx.URLInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	asOf, err := httpx.QueryDate(r, "as_of")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	balance, err := h.service.AccountBalance(r.Context(), companyID, id, asOf)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account_id": id, "balance": balance})
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := httpx.URLInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	statement, err := h.service.AccountStatement(r.Context(), companyID, id, from, to)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

// batch serves listing screens: ?ids=1,2,3 returns a balance per account.
func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	raw := strings.Split(r.URL.Query().Get("ids"), ",")
	ids := make([]int64, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ids must be a comma-separated list of account ids")
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ids is required")
		return
	}
	asOf, err := httpx.QueryDate(r, "as_of")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.AccountBalances(r.Context(), companyID, ids, asOf)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
