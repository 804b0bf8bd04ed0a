package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
)

// Engine applies bonus lifecycle commands. Every command runs inside the
// caller's transaction and follows the same shape:
//
//  1. lock the bookmaker row (pessimistic, one writer per bookmaker)
//  2. replay check against the operation log (idempotent duplicates)
//  3. guard the transition, then write status+reason+dates in one update
//     together with the operation record and the outbox event
//
// Rollover progress is fed by an external wagering feed and is never
// written here.
type Engine struct {
	bookmakers repository.BookmakerRepository
	bonuses    repository.BonusRepository
	templates  repository.TemplateRepository
	operations repository.OperationRepository
	outbox     repository.OutboxRepository

	// Now is the clock used to stamp lifecycle dates. Tests override it
	// for deterministic time.
	Now func() time.Time
}

// NewEngine creates a lifecycle engine with the given repositories.
func NewEngine(
	bookmakers repository.BookmakerRepository,
	bonuses repository.BonusRepository,
	templates repository.TemplateRepository,
	operations repository.OperationRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		bookmakers: bookmakers,
		bonuses:    bonuses,
		templates:  templates,
		operations: operations,
		outbox:     outbox,
		Now:        time.Now,
	}
}

// lockBookmaker acquires a row-level lock and returns the bookmaker.
// Must be called within a transaction.
func (e *Engine) lockBookmaker(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bookmaker, error) {
	bk, err := e.bookmakers.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("lock bookmaker: %w", err)
	}
	if bk == nil {
		return nil, domain.ErrNotFound("bookmaker", id.String())
	}
	return bk, nil
}

// loadForUpdate fetches the bonus, locks its bookmaker, and re-reads the
// bonus under the lock so the command sees the latest committed state.
func (e *Engine) loadForUpdate(ctx context.Context, tx pgx.Tx, bonusID uuid.UUID) (*domain.Bonus, *domain.Bookmaker, error) {
	b, err := e.bonuses.FindByID(ctx, tx, bonusID)
	if err != nil {
		return nil, nil, fmt.Errorf("find bonus: %w", err)
	}
	if b == nil {
		return nil, nil, domain.ErrNotFound("bonus", bonusID.String())
	}

	bk, err := e.lockBookmaker(ctx, tx, b.BookmakerID)
	if err != nil {
		return nil, nil, err
	}

	b, err = e.bonuses.FindByID(ctx, tx, bonusID)
	if err != nil {
		return nil, nil, fmt.Errorf("reread bonus: %w", err)
	}
	if b == nil {
		return nil, nil, domain.ErrNotFound("bonus", bonusID.String())
	}
	return b, bk, nil
}

// replayCheck looks up an already-applied operation with the same external
// id. On a hit it returns the stored outcome so a duplicate submission is
// answered idempotently instead of applied twice.
func (e *Engine) replayCheck(ctx context.Context, tx pgx.Tx, bk *domain.Bookmaker, externalID string) (*domain.CommandResult, error) {
	if externalID == "" {
		return nil, nil
	}
	op, err := e.operations.FindExisting(ctx, tx, bk.ID, externalID)
	if err != nil {
		return nil, fmt.Errorf("find existing operation: %w", err)
	}
	if op == nil {
		return nil, nil
	}

	b, err := e.bonuses.FindByID(ctx, tx, op.BonusID)
	if err != nil {
		return nil, fmt.Errorf("load replayed bonus: %w", err)
	}
	return &domain.CommandResult{Bonus: b, Bookmaker: bk, Idempotent: true}, nil
}

// record writes the operation-log entry and the outbox event for an applied
// command, inside the same transaction as the state change.
func (e *Engine) record(ctx context.Context, tx pgx.Tx, b *domain.Bonus, opType, externalID string, eventType domain.EventType) (domain.OutboxDraft, error) {
	now := e.Now()

	if externalID != "" {
		err := e.operations.Insert(ctx, tx, repository.Operation{
			BookmakerID: b.BookmakerID,
			BonusID:     b.ID,
			OpType:      opType,
			ExternalID:  externalID,
			CreatedAt:   now,
		})
		if err != nil {
			return domain.OutboxDraft{}, fmt.Errorf("record operation: %w", err)
		}
	}

	event := domain.NewBonusEvent(eventType, b, now)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return domain.OutboxDraft{}, fmt.Errorf("insert outbox event: %w", err)
	}
	return event, nil
}

// deriveExpiry returns credited_at plus the rollover deadline, or nil when
// the bonus has no deadline.
func deriveExpiry(creditedAt time.Time, deadlineDays int) *time.Time {
	if deadlineDays <= 0 {
		return nil
	}
	t := creditedAt.AddDate(0, 0, deadlineDays)
	return &t
}
