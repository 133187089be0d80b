package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

const defaultTimelineLimit = 50

// Handler exposes the audit timeline.
type Handler struct {
	logger   *slog.Logger
	timeline *Timeline
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, timeline *Timeline) *Handler {
	return &Handler{logger: logger, timeline: timeline}
}

// MountRoutes registers routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLInt64(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity := r.URL.Query().Get("entity")
	entityID := r.URL.Query().Get("entity_id")
	if entity == "" || entityID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "entity and entity_id are required")
		return
	}
	limit := defaultTimelineLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := h.timeline.For(r.Context(), companyID, entity, entityID, limit)
	if err != nil {
		h.logger.Error("audit timeline", slog.Int64("company_id", companyID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
