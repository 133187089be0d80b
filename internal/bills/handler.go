package bills

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

// Handler wires bill allocation and aging endpoints.
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
	r.Post("/allocations", h.allocate)
	r.Delete("/allocations/payments/{paymentID}", h.unwind)
	r.Get("/invoices/{id}", h.invoice)
	r.Get("/aging", h.aging)
	r.Post("/outstanding/recalculate", h.recalculate)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrOverAllocation), errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Allocation Rejected", err.Error())
	default:
		shared.RespondError(w, err)
	}
}

type allocateRequest struct {
	PaymentTransactionID int64           `json:"payment_transaction_id" validate:"required"`
	InvoiceID            int64           `json:"invoice_id" validate:"required"`
	Type                 string          `json:"type" validate:"required"`
	Amount               decimal.Decimal `json:"amount" validate:"required"`
	Date                 string          `json:"date" validate:"required"`
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req allocateRequest
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
	alloc, err := h.service.AllocatePayment(r.Context(), AllocationInput{
		CompanyID:            companyID,
		PaymentTransactionID: req.PaymentTransactionID,
		InvoiceID:            req.InvoiceID,
		Type:                 AllocationType(req.Type),
		Amount:               req.Amount,
		Date:                 date,
		ActorID:              httpx.ActorID(r),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, alloc)
}

func (h *Handler) unwind(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	paymentID, err := httpx.URLInt64(r, "paymentID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UnwindPayment(r.Context(), companyID, paymentID, httpx.ActorID(r)); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
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
	inv, allocations, err := h.service.GetInvoice(r.Context(), companyID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": inv, "allocations": allocations})
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	invoiceType := InvoiceType(r.URL.Query().Get("type"))
	if invoiceType != InvoiceSales && invoiceType != InvoicePurchase {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be SALES or PURCHASE")
		return
	}
	asOf, err := httpx.QueryDate(r, "as_of")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if asOf == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		asOf = &today
	}
	report, err := h.service.Aging(r.Context(), companyID, invoiceType, *asOf, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RecalculateOutstanding(r.Context(), companyID); err != nil {
		h.logger.Error("recalculate outstanding", slog.Int64("company_id", companyID), slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}
