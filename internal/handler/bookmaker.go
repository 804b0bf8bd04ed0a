package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
	"github.com/surehub/platform/internal/service"
)

// BookmakerHandler handles bookmaker endpoints, including the operable
// balance view.
type BookmakerHandler struct {
	bookmakers repository.BookmakerRepository
	insights   *service.InsightsService
	db         repository.DBTX
}

// NewBookmakerHandler creates a new BookmakerHandler.
func NewBookmakerHandler(bookmakers repository.BookmakerRepository, insights *service.InsightsService, db repository.DBTX) *BookmakerHandler {
	return &BookmakerHandler{bookmakers: bookmakers, insights: insights, db: db}
}

// createBookmakerRequest is the shape of POST /bookmakers.
type createBookmakerRequest struct {
	ProjectID uuid.UUID  `json:"project_id"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency"`
	Balance   int64      `json:"balance"`
	CatalogID *uuid.UUID `json:"catalog_id,omitempty"`
}

// Create handles POST /bookmakers.
func (h *BookmakerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookmakerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.ProjectID == uuid.Nil {
		RespondError(w, domain.ErrValidation("project is required"))
		return
	}
	if req.Name == "" {
		RespondError(w, domain.ErrValidation("name is required"))
		return
	}
	if err := domain.ValidateCurrency(req.Currency); err != nil {
		RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	now := time.Now().UTC()
	bk := &domain.Bookmaker{
		ID:        uuid.New(),
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Currency:  req.Currency,
		Balance:   req.Balance,
		CatalogID: req.CatalogID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.bookmakers.Create(r.Context(), h.db, bk); err != nil {
		RespondError(w, domain.ErrInternal("create bookmaker", err))
		return
	}
	RespondJSON(w, http.StatusCreated, bk)
}

// bookmakerListResponse wraps GET /projects/{projectID}/bookmakers.
type bookmakerListResponse struct {
	Bookmakers []domain.Bookmaker `json:"bookmakers"`
}

// ListByProject handles GET /projects/{projectID}/bookmakers.
func (h *BookmakerHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid project id"))
		return
	}

	bookmakers, err := h.bookmakers.ListByProject(r.Context(), h.db, projectID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list bookmakers", err))
		return
	}
	RespondJSON(w, http.StatusOK, bookmakerListResponse{Bookmakers: bookmakers})
}

// Get handles GET /bookmakers/{id}.
func (h *BookmakerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bookmaker id"))
		return
	}

	bk, err := h.bookmakers.FindByID(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find bookmaker", err))
		return
	}
	if bk == nil {
		RespondError(w, domain.ErrNotFound("bookmaker", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, bk)
}

// OperableBalance handles GET /bookmakers/{id}/balance.
func (h *BookmakerHandler) OperableBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bookmaker id"))
		return
	}

	snap, err := h.insights.OperableBalance(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, snap)
}
