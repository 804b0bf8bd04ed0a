package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteConfirmCredit moves a pending bonus to credited.
//
// This is the confirmation gate: rollover accrual must never start before
// the operator affirms the funds are actually usable, so credited_at is
// stamped here and nowhere else.
func (e *Engine) ExecuteConfirmCredit(ctx context.Context, tx pgx.Tx, params domain.ConfirmCreditParams) (*domain.CommandResult, error) {
	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("confirm credit: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if !domain.CanTransition(b.Status, domain.BonusStatusCredited) {
		return nil, domain.ErrValidation(fmt.Sprintf(
			"cannot credit a bonus in status %s", b.Status))
	}

	creditedAt := e.Now()
	if params.CreditedAt != nil {
		creditedAt = *params.CreditedAt
	}
	b.Status = domain.BonusStatusCredited
	b.CreditedAt = &creditedAt
	if b.ExpiresAt == nil {
		b.ExpiresAt = deriveExpiry(creditedAt, b.DeadlineDays)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.bonuses.Update(ctx, tx, b)
	if err != nil {
		return nil, fmt.Errorf("confirm credit update: %w", err)
	}

	event, err := e.record(ctx, tx, updated, "confirm_credit", params.ExternalOpID, domain.EventBonusCredited)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     updated,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
