package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
	"github.com/surehub/platform/internal/service"
)

// BonusHandler handles bonus lifecycle endpoints. Writes go through the
// BonusService transaction wrapper; reads hit the repositories directly.
type BonusHandler struct {
	bonuses repository.BonusRepository
	svc     *service.BonusService
	db      repository.DBTX
}

// NewBonusHandler creates a new BonusHandler.
func NewBonusHandler(bonuses repository.BonusRepository, svc *service.BonusService, db repository.DBTX) *BonusHandler {
	return &BonusHandler{bonuses: bonuses, svc: svc, db: db}
}

// bonusResponse wraps a command result. Monetary fields are integer cents.
type bonusResponse struct {
	Bonus      *domain.Bonus `json:"bonus"`
	Idempotent bool          `json:"idempotent,omitempty"`
}

// createBonusRequest is the shape of POST /bonuses.
type createBonusRequest struct {
	ProjectID     uuid.UUID  `json:"project_id"`
	BookmakerID   uuid.UUID  `json:"bookmaker_id"`
	Title         string     `json:"title"`
	Amount        int64      `json:"amount"`
	DepositAmount *int64     `json:"deposit_amount,omitempty"`
	Multiplier    float64    `json:"multiplier"`
	RolloverBase  string     `json:"rollover_base,omitempty"`
	MinOdds       float64    `json:"min_odds,omitempty"`
	DeadlineDays  int        `json:"deadline_days,omitempty"`
	TemplateID    *uuid.UUID `json:"template_id,omitempty"`

	AlreadyCredited bool       `json:"already_credited"`
	CreditedAt      *time.Time `json:"credited_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`

	ExternalOpID string `json:"external_op_id,omitempty"`
}

// Create handles POST /bonuses.
func (h *BonusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBonusRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Create(r.Context(), domain.CreateBonusParams{
		ProjectID:       req.ProjectID,
		BookmakerID:     req.BookmakerID,
		Title:           req.Title,
		Amount:          req.Amount,
		DepositAmount:   req.DepositAmount,
		Multiplier:      req.Multiplier,
		RolloverBase:    domain.RolloverBase(req.RolloverBase),
		MinOdds:         req.MinOdds,
		DeadlineDays:    req.DeadlineDays,
		TemplateID:      req.TemplateID,
		AlreadyCredited: req.AlreadyCredited,
		CreditedAt:      req.CreditedAt,
		ExpiresAt:       req.ExpiresAt,
		ExternalOpID:    req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	RespondJSON(w, status, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// Get handles GET /bonuses/{id}.
func (h *BonusHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}

	b, err := h.bonuses.FindByID(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find bonus", err))
		return
	}
	if b == nil {
		RespondError(w, domain.ErrNotFound("bonus", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: b})
}

// listResponse wraps GET /bonuses.
type listResponse struct {
	Bonuses []domain.Bonus `json:"bonuses"`
}

// List handles GET /bonuses with query filters.
func (h *BonusHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.BonusFilter{}
	q := r.URL.Query()

	if v := q.Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid project_id"))
			return
		}
		filter.ProjectID = id
	}
	if v := q.Get("bookmaker_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid bookmaker_id"))
			return
		}
		filter.BookmakerID = id
	}
	if v := q.Get("status"); v != "" {
		st := domain.BonusStatus(v)
		if !st.Valid() {
			RespondError(w, domain.ErrValidation("unknown status: "+v))
			return
		}
		filter.Status = st
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid since date"))
			return
		}
		filter.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid until date"))
			return
		}
		filter.Until = t
	}

	bonuses, err := h.bonuses.List(r.Context(), h.db, filter)
	if err != nil {
		RespondError(w, domain.ErrInternal("list bonuses", err))
		return
	}
	RespondJSON(w, http.StatusOK, listResponse{Bonuses: bonuses})
}

// transitionRequest carries the fields shared by transition endpoints.
type transitionRequest struct {
	Reason       string     `json:"reason,omitempty"`
	Target       string     `json:"target,omitempty"`
	CreditedAt   *time.Time `json:"credited_at,omitempty"`
	ExternalOpID string     `json:"external_op_id,omitempty"`
}

// ConfirmCredit handles POST /bonuses/{id}/confirm-credit.
func (h *BonusHandler) ConfirmCredit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}
	// Body is optional: a bare confirm stamps credited_at = now.
	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.ConfirmCredit(r.Context(), domain.ConfirmCreditParams{
		BonusID:      id,
		CreditedAt:   req.CreditedAt,
		ExternalOpID: req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// Finalize handles POST /bonuses/{id}/finalize.
func (h *BonusHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}
	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Finalize(r.Context(), domain.FinalizeParams{
		BonusID:      id,
		Reason:       domain.FinalizeReason(req.Reason),
		ExternalOpID: req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// CorrectStatus handles POST /bonuses/{id}/correct-status.
func (h *BonusHandler) CorrectStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}
	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.CorrectStatus(r.Context(), domain.CorrectStatusParams{
		BonusID:      id,
		Target:       domain.BonusStatus(req.Target),
		ExternalOpID: req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// editBonusRequest is the shape of PUT /bonuses/{id}. The edit dialog
// submits the full form, so fields carry replace semantics.
type editBonusRequest struct {
	Title         string     `json:"title"`
	Amount        int64      `json:"amount"`
	DepositAmount *int64     `json:"deposit_amount,omitempty"`
	Multiplier    float64    `json:"multiplier"`
	RolloverBase  string     `json:"rollover_base,omitempty"`
	MinOdds       float64    `json:"min_odds,omitempty"`
	DeadlineDays  int        `json:"deadline_days,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	ExternalOpID  string     `json:"external_op_id,omitempty"`
}

// Edit handles PUT /bonuses/{id}.
func (h *BonusHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}
	var req editBonusRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Edit(r.Context(), domain.EditBonusParams{
		BonusID:       id,
		Title:         req.Title,
		Amount:        req.Amount,
		DepositAmount: req.DepositAmount,
		Multiplier:    req.Multiplier,
		RolloverBase:  domain.RolloverBase(req.RolloverBase),
		MinOdds:       req.MinOdds,
		DeadlineDays:  req.DeadlineDays,
		ExpiresAt:     req.ExpiresAt,
		ExternalOpID:  req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// EditReason handles PATCH /bonuses/{id}/reason.
func (h *BonusHandler) EditReason(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}
	var req transitionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.EditReason(r.Context(), domain.EditReasonParams{
		BonusID:      id,
		Reason:       domain.FinalizeReason(req.Reason),
		ExternalOpID: req.ExternalOpID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bonusResponse{Bonus: result.Bonus, Idempotent: result.Idempotent})
}

// Delete handles DELETE /bonuses/{id}.
func (h *BonusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bonus id"))
		return
	}

	_, err = h.svc.Delete(r.Context(), domain.DeleteBonusParams{
		BonusID:      id,
		ExternalOpID: r.URL.Query().Get("external_op_id"),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
