package periods

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires period lock endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/period-locks", h.list)
	r.Post("/period-locks", h.create)
	r.Post("/period-locks/financial-year", h.lockFinancialYear)
	r.Post("/period-locks/gst", h.lockGST)
	r.Post("/period-locks/{id}/deactivate", h.deactivate)
	r.Get("/period-locks/check", h.check)
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrLockNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	shared.RespondError(w, err)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	locks, err := h.service.List(r.Context(), companyID)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, locks)
}

type createLockRequest struct {
	LockedFrom   string   `json:"locked_from" validate:"required"`
	LockedTo     string   `json:"locked_to" validate:"required"`
	VoucherTypes []string `json:"voucher_types"`
	Reason       string   `json:"reason" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createLockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	from, err := time.Parse("2006-01-02", req.LockedFrom)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "locked_from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", req.LockedTo)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "locked_to must be YYYY-MM-DD")
		return
	}
	lock, err := h.service.CreateLock(r.Context(), Lock{
		CompanyID:    companyID,
		LockedFrom:   from,
		LockedTo:     to,
		VoucherTypes: req.VoucherTypes,
		Reason:       req.Reason,
	}, httpx.ActorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lock)
}

type lockFinancialYearRequest struct {
	StartYear int    `json:"start_year" validate:"required"`
	Reason    string `json:"reason"`
}

func (h *Handler) lockFinancialYear(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req lockFinancialYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	lock, err := h.service.LockFinancialYear(r.Context(), companyID, req.StartYear, req.Reason, httpx.ActorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lock)
}

type lockGSTRequest struct {
	Month  int    `json:"month" validate:"required,min=1,max=12"`
	Year   int    `json:"year" validate:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) lockGST(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req lockGSTRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	lock, err := h.service.LockGSTPeriod(r.Context(), companyID, time.Month(req.Month), req.Year, req.Reason, httpx.ActorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lock)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.Deactivate(r.Context(), companyID, id, httpx.ActorID(r)); err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// check answers whether a date is postable for a voucher type.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
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
	vt := ledger.VoucherType(r.URL.Query().Get("voucher_type"))
	lock, reason, err := h.service.IsLocked(r.Context(), companyID, date, vt)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"locked": lock != nil,
		"reason": reason,
		"lock":   lock,
	})
}
