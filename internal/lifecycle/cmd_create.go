package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surehub/platform/internal/domain"
)

// ExecuteCreate registers a new bonus for a bookmaker.
//
// The bonus lands in pending unless the operator confirmed it is already
// visible in the account, in which case it is credited immediately and
// credited_at stamped. The bonus currency is inherited from the bookmaker,
// never chosen independently. A bookmaker with an outstanding
// (pending or credited) bonus is rejected with a conflict.
func (e *Engine) ExecuteCreate(ctx context.Context, tx pgx.Tx, params domain.CreateBonusParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil && params.TemplateID == nil {
		return nil, domain.ErrValidation(err.Error())
	}

	// Lock
	bk, err := e.lockBookmaker(ctx, tx, params.BookmakerID)
	if err != nil {
		return nil, fmt.Errorf("create bonus: %w", err)
	}

	// Idempotency check
	if existing, err := e.replayCheck(ctx, tx, bk, params.ExternalOpID); err != nil || existing != nil {
		return existing, err
	}

	// One outstanding bonus per bookmaker. The partial unique index on
	// bonuses(bookmaker_id) backs this up against writers that bypass the
	// bookmaker lock.
	outstanding, err := e.bonuses.FindOutstanding(ctx, tx, bk.ID)
	if err != nil {
		return nil, fmt.Errorf("check outstanding bonus: %w", err)
	}
	if outstanding != nil {
		return nil, domain.ErrConflict(fmt.Sprintf(
			"bookmaker %s already has a %s bonus outstanding", bk.Name, outstanding.Status))
	}

	now := e.Now()
	b := &domain.Bonus{
		ID:            uuid.New(),
		ProjectID:     params.ProjectID,
		BookmakerID:   bk.ID,
		Title:         params.Title,
		Currency:      bk.Currency,
		Source:        domain.SourceManual,
		Amount:        params.Amount,
		DepositAmount: params.DepositAmount,
		Multiplier:    params.Multiplier,
		RolloverBase:  params.RolloverBase,
		MinOdds:       params.MinOdds,
		DeadlineDays:  params.DeadlineDays,
		Status:        domain.BonusStatusPending,
		CreatedAt:     now,
		ExpiresAt:     params.ExpiresAt,
	}

	if params.TemplateID != nil {
		if err := e.applyTemplate(ctx, tx, b, *params.TemplateID); err != nil {
			return nil, err
		}
	}

	if params.AlreadyCredited {
		creditedAt := now
		if params.CreditedAt != nil {
			creditedAt = *params.CreditedAt
		}
		b.Status = domain.BonusStatusCredited
		b.CreditedAt = &creditedAt
		if b.ExpiresAt == nil {
			b.ExpiresAt = deriveExpiry(creditedAt, b.DeadlineDays)
		}
	}

	b.NormalizeTitle()
	b.RecomputeRolloverTarget()
	if err := b.Validate(); err != nil {
		return nil, err
	}

	inserted, err := e.bonuses.Insert(ctx, tx, b)
	if err != nil {
		if isOutstandingViolation(err) {
			return nil, domain.ErrConflict(fmt.Sprintf(
				"bookmaker %s already has a bonus outstanding", bk.Name))
		}
		return nil, fmt.Errorf("insert bonus: %w", err)
	}

	eventType := domain.EventBonusCreated
	if inserted.Status == domain.BonusStatusCredited {
		eventType = domain.EventBonusCredited
	}
	event, err := e.record(ctx, tx, inserted, "create", params.ExternalOpID, eventType)
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Bonus:     inserted,
		Bookmaker: bk,
		Events:    []domain.OutboxDraft{event},
	}, nil
}

// isOutstandingViolation detects the one-outstanding-bonus partial unique
// index firing, which happens when a concurrent session slips an insert in
// between the FindOutstanding check and ours.
func isOutstandingViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "uniq_bonuses_outstanding"
}

// applyTemplate prefills unset terms from the catalog template and captures
// the frozen snapshot. The template value formula fills the amount only
// when the operator left it empty and entered a reference deposit.
func (e *Engine) applyTemplate(ctx context.Context, tx pgx.Tx, b *domain.Bonus, templateID uuid.UUID) error {
	tpl, err := e.templates.FindByID(ctx, tx, templateID)
	if err != nil {
		return fmt.Errorf("find template: %w", err)
	}
	if tpl == nil {
		return domain.ErrNotFound("bonus template", templateID.String())
	}

	b.Source = domain.SourceTemplate
	snap := tpl.Snapshot()
	b.TemplateSnapshot = &snap

	if b.Title == "" {
		b.Title = tpl.Title
	}
	if b.Multiplier == 0 {
		b.Multiplier = tpl.Multiplier
		b.RolloverBase = tpl.RolloverBase
	}
	if b.MinOdds == 0 {
		b.MinOdds = tpl.MinOdds
	}
	if b.DeadlineDays == 0 {
		b.DeadlineDays = tpl.DeadlineDays
	}
	if b.Amount == 0 && b.DepositAmount != nil {
		b.Amount = domain.TemplateBonusValue(*b.DepositAmount, tpl.Percent, tpl.MaxValue)
	}
	return nil
}
