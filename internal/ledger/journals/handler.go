package journals

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires journal transaction endpoints.
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
	r.Post("/journals", h.create)
	r.Get("/journals", h.list)
	r.Get("/journals/{id}", h.get)
	r.Post("/journals/{id}/post", h.post)
	r.Post("/journals/{id}/reverse", h.reverse)
}

type lineRequest struct {
	AccountID    int64           `json:"account_id" validate:"required"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	PartyID      *int64          `json:"party_id"`
	PartyType    *string         `json:"party_type"`
	CostCenterID *int64          `json:"cost_center_id"`
}

type createVoucherRequest struct {
	VoucherType   string        `json:"voucher_type" validate:"required"`
	Date          string        `json:"date" validate:"required"`
	Description   string        `json:"description"`
	ReferenceType string        `json:"reference_type"`
	ReferenceID   *uuid.UUID    `json:"reference_id"`
	Draft         bool          `json:"draft"`
	Lines         []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}

	in := VoucherInput{
		CompanyID:     companyID,
		VoucherType:   ledger.VoucherType(req.VoucherType),
		Date:          date,
		Description:   req.Description,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Draft:         req.Draft,
		ActorID:       httpx.ActorID(r),
	}
	for _, l := range req.Lines {
		line := LineInput{
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Description:  l.Description,
			PartyID:      l.PartyID,
			CostCenterID: l.CostCenterID,
		}
		if l.PartyType != nil {
			pt := ledger.PartyType(*l.PartyType)
			line.PartyType = &pt
		}
		in.Lines = append(in.Lines, line)
	}

	txn, err := h.service.CreateVoucher(r.Context(), in)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
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
	filter := ListFilter{
		VoucherType: ledger.VoucherType(r.URL.Query().Get("voucher_type")),
		Status:      ledger.TransactionStatus(r.URL.Query().Get("status")),
		From:        from,
		To:          to,
	}
	items, err := h.service.List(r.Context(), companyID, filter)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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
	txn, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
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
	txn, err := h.service.PostDraft(r.Context(), companyID, id, httpx.ActorID(r))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

type reverseRequest struct {
	Date   string `json:"date" validate:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
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
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	txn, err := h.service.ReverseVoucher(r.Context(), companyID, id, date, req.Reason, httpx.ActorID(r))
	if err != nil {
		h.logger.Warn("reverse voucher", slog.Int64("transaction_id", id), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}
