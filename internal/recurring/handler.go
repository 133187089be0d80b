package recurring

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires recurring schedule endpoints.
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
	r.Post("/recurring", h.create)
	r.Get("/recurring", h.list)
	r.Get("/recurring/due", h.listDue)
	r.Get("/recurring/{id}", h.get)
	r.Post("/recurring/{id}/process", h.process)
	r.Post("/recurring/{id}/pause", h.pause)
	r.Post("/recurring/{id}/resume", h.resume)
	r.Post("/recurring/process-due", h.processDue)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrScheduleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrScheduleInactive), errors.Is(err, ErrNotDue):
		httpx.Problem(w, http.StatusConflict, "Not Processable", err.Error())
	default:
		shared.RespondError(w, err)
	}
}

type createScheduleRequest struct {
	Name            string          `json:"name" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Frequency       string          `json:"frequency" validate:"required"`
	Category        string          `json:"category"`
	StartDate       string          `json:"start_date" validate:"required"`
	EndDate         *string         `json:"end_date"`
	DayOfMonth      *int            `json:"day_of_month"`
	DayOfWeek       *int            `json:"day_of_week"`
	TotalOccurrence *int            `json:"total_occurrences"`
	AutoCreate      bool            `json:"auto_create"`
	DebitAccountID  *int64          `json:"debit_account_id"`
	CreditAccountID *int64          `json:"credit_account_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createScheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
		return
	}
	in := CreateInput{
		CompanyID:       companyID,
		Name:            req.Name,
		Amount:          req.Amount,
		Frequency:       Frequency(req.Frequency),
		Category:        Category(req.Category),
		StartDate:       start,
		DayOfMonth:      req.DayOfMonth,
		TotalOccurrence: req.TotalOccurrence,
		AutoCreate:      req.AutoCreate,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		ActorID:         httpx.ActorID(r),
	}
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be YYYY-MM-DD")
			return
		}
		in.EndDate = &end
	}
	if req.DayOfWeek != nil {
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "day_of_week must be 0 (Sunday) through 6")
			return
		}
		wd := time.Weekday(*req.DayOfWeek)
		in.DayOfWeek = &wd
	}
	sched, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sched)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := h.service.List(r.Context(), companyID, activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) listDue(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.ListDue(r.Context(), companyID)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	sched, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sched)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	txn, err := h.service.Process(r.Context(), companyID, id, httpx.ActorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.service.Pause(r.Context(), companyID, id); err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.service.Resume(r.Context(), companyID, id); err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (h *Handler) processDue(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	n, err := h.service.ProcessDue(r.Context(), companyID, httpx.ActorID(r))
	if err != nil {
		h.logger.Error("process due schedules", slog.Int64("company_id", companyID), slog.Int("processed", n), slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"processed": n})
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	id, err := httpx.URLInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	return companyID, id, true
}
