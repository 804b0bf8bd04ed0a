package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteEditReason corrects the finalize reason of a finalized bonus.
// This is the single mutation allowed after finalization; financial fields
// stay closed.
func (e *Engine) ExecuteEditReason(ctx context.Context, tx pgx.Tx, params domain.EditReasonParams) (*domain.CommandResult, error) {
	if !params.Reason.Valid() {
		return nil, domain.ErrValidation("unknown finalize reason: " + string(params.Reason))
	}

	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("edit reason: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if b.Status != domain.BonusStatusFinalized {
		return nil, domain.ErrValidation("finalize reason can only be edited on a finalized bonus")
	}

	reason := params.Reason
	b.FinalizeReason = &reason

	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.bonuses.Update(ctx, tx, b)
	if err != nil {
		return nil, fmt.Errorf("edit reason update: %w", err)
	}

	event, err := e.record(ctx, tx, updated, "edit_reason", params.ExternalOpID, domain.EventBonusEdited)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     updated,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
