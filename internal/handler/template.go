package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
)

// TemplateHandler serves the read-only bonus template catalog.
type TemplateHandler struct {
	templates repository.TemplateRepository
	db        repository.DBTX
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templates repository.TemplateRepository, db repository.DBTX) *TemplateHandler {
	return &TemplateHandler{templates: templates, db: db}
}

// templateListResponse wraps GET /catalogs/{catalogID}/templates.
type templateListResponse struct {
	Templates []domain.BonusTemplate `json:"templates"`
}

// ListByCatalog handles GET /catalogs/{catalogID}/templates.
func (h *TemplateHandler) ListByCatalog(w http.ResponseWriter, r *http.Request) {
	catalogID, err := uuid.Parse(chi.URLParam(r, "catalogID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid catalog id"))
		return
	}

	templates, err := h.templates.ListByCatalog(r.Context(), h.db, catalogID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list templates", err))
		return
	}
	RespondJSON(w, http.StatusOK, templateListResponse{Templates: templates})
}

// Get handles GET /templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid template id"))
		return
	}

	tpl, err := h.templates.FindByID(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find template", err))
		return
	}
	if tpl == nil {
		RespondError(w, domain.ErrNotFound("template", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, tpl)
}
