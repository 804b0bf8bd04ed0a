package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteFinalize closes out a credited bonus with a mandatory reason.
//
// Once finalized the bonus stops counting toward the operable balance
// regardless of its rollover progress, and the progress value is frozen
// for history and analytics.
func (e *Engine) ExecuteFinalize(ctx context.Context, tx pgx.Tx, params domain.FinalizeParams) (*domain.CommandResult, error) {
	change, err := domain.NewFinalization(params.Reason)
	if err != nil {
		return nil, err
	}

	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if !domain.CanTransition(b.Status, change.To()) {
		return nil, domain.ErrValidation(fmt.Sprintf(
			"cannot finalize a bonus in status %s", b.Status))
	}

	now := e.Now()
	reason := change.Reason()
	b.Status = domain.BonusStatusFinalized
	b.FinalizeReason = &reason
	b.FinalizedAt = &now

	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.bonuses.Update(ctx, tx, b)
	if err != nil {
		return nil, fmt.Errorf("finalize update: %w", err)
	}

	event, err := e.record(ctx, tx, updated, "finalize", params.ExternalOpID, domain.EventBonusFinalized)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     updated,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
