package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteEdit corrects the descriptive and monetary fields of a bonus in
// place. Permitted for any status except finalized. The rollover target is
// recomputed from the edited inputs so it is never stale.
func (e *Engine) ExecuteEdit(ctx context.Context, tx pgx.Tx, params domain.EditBonusParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("edit bonus: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if b.Status == domain.BonusStatusFinalized {
		return nil, domain.ErrValidation("a finalized bonus is immutable; only its reason may be edited")
	}

	b.Title = params.Title
	b.Amount = params.Amount
	b.DepositAmount = params.DepositAmount
	b.Multiplier = params.Multiplier
	b.RolloverBase = params.RolloverBase
	b.MinOdds = params.MinOdds
	b.DeadlineDays = params.DeadlineDays
	if params.ExpiresAt != nil {
		b.ExpiresAt = params.ExpiresAt
	}

	b.NormalizeTitle()
	b.RecomputeRolloverTarget()
	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.bonuses.Update(ctx, tx, b)
	if err != nil {
		return nil, fmt.Errorf("edit update: %w", err)
	}

	event, err := e.record(ctx, tx, updated, "edit", params.ExternalOpID, domain.EventBonusEdited)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     updated,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
