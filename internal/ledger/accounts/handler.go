package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// Handler wires chart-of-accounts endpoints.
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
	r.Post("/accounts", h.create)
	r.Post("/accounts/initialize", h.initialize)
	r.Get("/accounts", h.list)
	r.Get("/accounts/tree", h.tree)
	r.Get("/accounts/{id}", h.get)
	r.Delete("/accounts/{id}", h.delete)
	r.Post("/accounts/{id}/deactivate", h.deactivate)
}

type createAccountRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required"`
	ParentID *int64 `json:"parent_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	acc, err := h.service.Create(r.Context(), Account{
		CompanyID: companyID,
		Code:      req.Code,
		Name:      req.Name,
		Type:      ledger.AccountType(req.Type),
		ParentID:  req.ParentID,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.InitializeChart(r.Context(), companyID); err != nil {
		h.logger.Error("initialize chart", slog.Int64("company_id", companyID), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), companyID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	nodes, err := h.service.Tree(r.Context(), companyID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nodes)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	companyID, id, err := companyAndID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	acc, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	companyID, id, err := companyAndID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	companyID, id, err := companyAndID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Deactivate(r.Context(), companyID, id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func companyAndID(r *http.Request) (int64, int64, error) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		return 0, 0, err
	}
	id, err := httpx.URLInt64(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return companyID, id, nil
}
