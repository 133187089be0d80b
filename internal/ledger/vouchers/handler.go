package vouchers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler accepts normalized business documents and posts them through
// the rule table.
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
	r.Post("/vouchers/sales-invoice", h.salesInvoice)
	r.Post("/vouchers/purchase-invoice", h.purchaseInvoice)
	r.Post("/vouchers/receipt", h.receipt)
	r.Post("/vouchers/payment", h.payment)
	r.Post("/vouchers/contra", h.contra)
	r.Post("/vouchers/stock-movement", h.stockMovement)
	r.Post("/vouchers/debit-note", h.debitNote)
	r.Post("/vouchers/credit-note", h.creditNote)
	r.Post("/vouchers/order-confirmation", h.orderConfirmation)
}

// decode parses the body, validates it and extracts shared request scope.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) (int64, bool) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, false
	}
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return 0, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return 0, false
	}
	return companyID, true
}

func parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func (h *Handler) respond(w http.ResponseWriter, txn journals.Transaction, err error) {
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

type salesInvoiceRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	CustomerID  *int64          `json:"customer_id"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"required"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IntraState  bool            `json:"intra_state"`
	Description string          `json:"description"`
}

func (h *Handler) salesInvoice(w http.ResponseWriter, r *http.Request) {
	var req salesInvoiceRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}
	txn, err := h.service.PostSalesInvoice(r.Context(), SalesInvoiceInput{
		CompanyID:   companyID,
		InvoiceID:   req.InvoiceID,
		Date:        date,
		CustomerID:  req.CustomerID,
		Subtotal:    req.Subtotal,
		GSTRate:     req.GSTRate,
		IntraState:  req.IntraState,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	})
	h.respond(w, txn, err)
}

type purchaseInvoiceRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	VendorID    *int64          `json:"vendor_id"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"required"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IntraState  bool            `json:"intra_state"`
	TDSAmount   decimal.Decimal `json:"tds_amount"`
	Description string          `json:"description"`
}

func (h *Handler) purchaseInvoice(w http.ResponseWriter, r *http.Request) {
	var req purchaseInvoiceRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}
	txn, err := h.service.PostPurchaseInvoice(r.Context(), PurchaseInvoiceInput{
		CompanyID:   companyID,
		InvoiceID:   req.InvoiceID,
		Date:        date,
		VendorID:    req.VendorID,
		Subtotal:    req.Subtotal,
		GSTRate:     req.GSTRate,
		IntraState:  req.IntraState,
		TDSAmount:   req.TDSAmount,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	})
	h.respond(w, txn, err)
}

type settlementRequest struct {
	ReferenceID *uuid.UUID      `json:"reference_id"`
	Date        string          `json:"date" validate:"required"`
	PartyID     *int64          `json:"party_id"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	ViaBank     bool            `json:"via_bank"`
	Description string          `json:"description"`
}

func (h *Handler) settlementInput(w http.ResponseWriter, r *http.Request) (SettlementInput, bool) {
	var req settlementRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return SettlementInput{}, false
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return SettlementInput{}, false
	}
	return SettlementInput{
		CompanyID:   companyID,
		ReferenceID: req.ReferenceID,
		Date:        date,
		PartyID:     req.PartyID,
		Amount:      req.Amount,
		ViaBank:     req.ViaBank,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	}, true
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	in, ok := h.settlementInput(w, r)
	if !ok {
		return
	}
	txn, err := h.service.PostReceipt(r.Context(), in)
	h.respond(w, txn, err)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	in, ok := h.settlementInput(w, r)
	if !ok {
		return
	}
	txn, err := h.service.PostPayment(r.Context(), in)
	h.respond(w, txn, err)
}

type contraRequest struct {
	Date            string          `json:"date" validate:"required"`
	FromAccountCode string          `json:"from_account_code" validate:"required"`
	ToAccountCode   string          `json:"to_account_code" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Description     string          `json:"description"`
}

func (h *Handler) contra(w http.ResponseWriter, r *http.Request) {
	var req contraRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}
	txn, err := h.service.PostContra(r.Context(), ContraInput{
		CompanyID:       companyID,
		Date:            date,
		FromAccountCode: req.FromAccountCode,
		ToAccountCode:   req.ToAccountCode,
		Amount:          req.Amount,
		Description:     req.Description,
		ActorID:         httpx.ActorID(r),
	})
	h.respond(w, txn, err)
}

type stockMovementRequest struct {
	MovementID  uuid.UUID       `json:"movement_id" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	Direction   string          `json:"direction" validate:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Adjustment  bool            `json:"adjustment"`
	Description string          `json:"description"`
}

func (h *Handler) stockMovement(w http.ResponseWriter, r *http.Request) {
	var req stockMovementRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}
	txn, err := h.service.PostStockMovement(r.Context(), StockMovementInput{
		CompanyID:   companyID,
		MovementID:  req.MovementID,
		Date:        date,
		Direction:   StockDirection(req.Direction),
		Amount:      req.Amount,
		Adjustment:  req.Adjustment,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	})
	h.respond(w, txn, err)
}

type noteRequest struct {
	NoteID      uuid.UUID       `json:"note_id" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	PartyID     *int64          `json:"party_id"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"required"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IntraState  bool            `json:"intra_state"`
	Description string          `json:"description"`
}

func (h *Handler) noteInput(w http.ResponseWriter, r *http.Request) (ReturnInput, bool) {
	var req noteRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return ReturnInput{}, false
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return ReturnInput{}, false
	}
	return ReturnInput{
		CompanyID:   companyID,
		NoteID:      req.NoteID,
		Date:        date,
		PartyID:     req.PartyID,
		Subtotal:    req.Subtotal,
		GSTRate:     req.GSTRate,
		IntraState:  req.IntraState,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	}, true
}

func (h *Handler) debitNote(w http.ResponseWriter, r *http.Request) {
	in, ok := h.noteInput(w, r)
	if !ok {
		return
	}
	txn, err := h.service.PostDebitNote(r.Context(), in)
	h.respond(w, txn, err)
}

func (h *Handler) creditNote(w http.ResponseWriter, r *http.Request) {
	in, ok := h.noteInput(w, r)
	if !ok {
		return
	}
	txn, err := h.service.PostCreditNote(r.Context(), in)
	h.respond(w, txn, err)
}

type orderRequest struct {
	OrderID     uuid.UUID       `json:"order_id" validate:"required"`
	Kind        string          `json:"kind" validate:"required,oneof=SALES PURCHASE"`
	Date        string          `json:"date" validate:"required"`
	PartyID     *int64          `json:"party_id"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"required"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IntraState  bool            `json:"intra_state"`
	Description string          `json:"description"`
}

func (h *Handler) orderConfirmation(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}
	txn, err := h.service.PostOrderConfirmation(r.Context(), OrderInput{
		CompanyID:   companyID,
		OrderID:     req.OrderID,
		Kind:        OrderKind(req.Kind),
		Date:        date,
		PartyID:     req.PartyID,
		Subtotal:    req.Subtotal,
		GSTRate:     req.GSTRate,
		IntraState:  req.IntraState,
		Description: req.Description,
		ActorID:     httpx.ActorID(r),
	})
	h.respond(w, txn, err)
}
