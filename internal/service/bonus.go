package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surehub/platform/internal/balance"
	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/lifecycle"
)

// BonusService wraps lifecycle commands in a database transaction and keeps
// the operable-balance projection in sync after each applied transition.
type BonusService struct {
	pool   *pgxpool.Pool
	engine *lifecycle.Engine
	store  balance.Store
	logger *slog.Logger
}

// NewBonusService creates a new BonusService.
func NewBonusService(pool *pgxpool.Pool, engine *lifecycle.Engine, store balance.Store, logger *slog.Logger) *BonusService {
	return &BonusService{pool: pool, engine: engine, store: store, logger: logger}
}

// inTx runs one lifecycle command inside a transaction and invalidates the
// bookmaker's cached balance once the commit lands. Invalidation failure is
// logged, not surfaced: the cache has a TTL and the next read recomputes.
func (s *BonusService) inTx(ctx context.Context, cmd func(tx pgx.Tx) (*domain.CommandResult, error)) (*domain.CommandResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := cmd(tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	if result.Bookmaker != nil && !result.Idempotent {
		if err := balance.InvalidateProjection(ctx, s.store, result.Bookmaker.ID); err != nil {
			s.logger.Warn("invalidate balance projection",
				"bookmaker_id", result.Bookmaker.ID,
				"error", err,
			)
		}
	}
	return result, nil
}

// Create registers a new bonus for a bookmaker.
func (s *BonusService) Create(ctx context.Context, params domain.CreateBonusParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteCreate(ctx, tx, params)
	})
}

// ConfirmCredit moves a pending bonus to credited.
func (s *BonusService) ConfirmCredit(ctx context.Context, params domain.ConfirmCreditParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteConfirmCredit(ctx, tx, params)
	})
}

// Finalize closes out a credited bonus with a reason.
func (s *BonusService) Finalize(ctx context.Context, params domain.FinalizeParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteFinalize(ctx, tx, params)
	})
}

// CorrectStatus moves a credited bonus to a history state.
func (s *BonusService) CorrectStatus(ctx context.Context, params domain.CorrectStatusParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteCorrectStatus(ctx, tx, params)
	})
}

// Edit replaces the editable terms of a non-finalized bonus.
func (s *BonusService) Edit(ctx context.Context, params domain.EditBonusParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteEdit(ctx, tx, params)
	})
}

// EditReason rewrites the finalize reason of a finalized bonus.
func (s *BonusService) EditReason(ctx context.Context, params domain.EditReasonParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteEditReason(ctx, tx, params)
	})
}

// Delete removes a non-finalized bonus.
func (s *BonusService) Delete(ctx context.Context, params domain.DeleteBonusParams) (*domain.CommandResult, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteDelete(ctx, tx, params)
	})
}
