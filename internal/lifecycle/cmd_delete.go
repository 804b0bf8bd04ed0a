package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteDelete removes a bonus that is still editable. Finalized bonuses
// are immutable history and cannot be deleted.
func (e *Engine) ExecuteDelete(ctx context.Context, tx pgx.Tx, params domain.DeleteBonusParams) (*domain.CommandResult, error) {
	b, bk, err := e.loadForUpdate(ctx, tx, params.BonusID)
	if err != nil {
		return nil, fmt.Errorf("delete bonus: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	if b.Status == domain.BonusStatusFinalized {
		return nil, domain.ErrValidation("a finalized bonus is retained as history and cannot be deleted")
	}

	if err := e.bonuses.Delete(ctx, tx, b.ID); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}

	event, err := e.record(ctx, tx, b, "delete", params.ExternalOpID, domain.EventBonusDeleted)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     b,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}
