package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteCorrectStatus moves a credited bonus to one of the history states
// (failed, expired, reversed) by operator correction. The bonus keeps its
// credited_at so history shows when the funds were believed usable.
func (e *Engine) ExecuteCorrectStatus(ctx context.Context, tx pgx.Tx, params domain.CorrectStatusParams) (*domain.CommandResult, error) {
	change, err := domain.NewCorrection(params.Target)
	if err != nil {
		return nil, err
	}

	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("correct status: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if !domain.CanTransition(b.Status, change.To()) {
		return nil, domain.ErrValidation(fmt.Sprintf(
			"cannot correct a bonus from %s to %s", b.Status, change.To()))
	}

	b.Status = change.To()

	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.bonuses.Update(ctx, tx, b)
	if err != nil {
		return nil, fmt.Errorf("correct status update: %w", err)
	}

	event, err := e.record(ctx, tx, updated, "correct_status", params.ExternalOpID, domain.EventBonusCorrected)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     updated,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
