package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surehub/platform/internal/analytics"
	"github.com/surehub/platform/internal/balance"
	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
)

// InsightsService serves the read side: operable balances, reliability
// scoreboards and the alerting pass. All computations are pure functions
// over freshly read rows; the balance projection cache is the only state.
type InsightsService struct {
	pool       *pgxpool.Pool
	bookmakers repository.BookmakerRepository
	bonuses    repository.BonusRepository
	store      balance.Store
	ttl        time.Duration
	logger     *slog.Logger

	// Now is the clock used for alerting and trailing windows. Tests
	// override it for deterministic time.
	Now func() time.Time
}

// NewInsightsService creates a new InsightsService.
func NewInsightsService(
	pool *pgxpool.Pool,
	bookmakers repository.BookmakerRepository,
	bonuses repository.BonusRepository,
	store balance.Store,
	ttl time.Duration,
	logger *slog.Logger,
) *InsightsService {
	if ttl <= 0 {
		ttl = balance.DefaultTTL
	}
	return &InsightsService{
		pool:       pool,
		bookmakers: bookmakers,
		bonuses:    bonuses,
		store:      store,
		ttl:        ttl,
		logger:     logger,
		Now:        time.Now,
	}
}

// OperableBalance returns the bookmaker's operable-balance snapshot,
// served from the projection cache when fresh and recomputed from source
// otherwise. Wagering progress arrives asynchronously, so a cache miss is
// the normal path after any lifecycle transition.
func (s *InsightsService) OperableBalance(ctx context.Context, bookmakerID uuid.UUID) (*balance.Snapshot, error) {
	if snap, err := balance.GetProjection(ctx, s.store, bookmakerID); err == nil {
		return snap, nil
	}

	bk, err := s.bookmakers.FindByID(ctx, s.pool, bookmakerID)
	if err != nil {
		return nil, domain.ErrInternal("find bookmaker", err)
	}
	if bk == nil {
		return nil, domain.ErrNotFound("bookmaker", bookmakerID.String())
	}

	credited, err := s.bonuses.ListCredited(ctx, s.pool, bookmakerID)
	if err != nil {
		return nil, domain.ErrInternal("list credited bonuses", err)
	}

	snap := balance.Compute(bk, credited, s.Now())
	if err := balance.UpdateProjection(ctx, s.store, snap, s.ttl); err != nil {
		s.logger.Warn("cache balance projection", "bookmaker_id", bookmakerID, "error", err)
	}
	return &snap, nil
}

// Scoreboard computes and ranks reliability scores for every bookmaker in
// a project over the window.
func (s *InsightsService) Scoreboard(ctx context.Context, projectID uuid.UUID, w analytics.Window) ([]analytics.BookmakerScore, error) {
	bookmakers, err := s.bookmakers.ListByProject(ctx, s.pool, projectID)
	if err != nil {
		return nil, domain.ErrInternal("list bookmakers", err)
	}

	bonuses, err := s.bonuses.List(ctx, s.pool, repository.BonusFilter{ProjectID: projectID})
	if err != nil {
		return nil, domain.ErrInternal("list bonuses", err)
	}
	byBookmaker := make(map[uuid.UUID][]domain.Bonus)
	for i := range bonuses {
		byBookmaker[bonuses[i].BookmakerID] = append(byBookmaker[bonuses[i].BookmakerID], bonuses[i])
	}

	scores := make([]analytics.BookmakerScore, 0, len(bookmakers))
	for i := range bookmakers {
		bk := &bookmakers[i]
		scores = append(scores, analytics.Score(bk, byBookmaker[bk.ID], w))
	}
	analytics.Rank(scores)
	return scores, nil
}

// Alerts runs the alerting pass for a project against the current clock.
func (s *InsightsService) Alerts(ctx context.Context, projectID uuid.UUID) ([]analytics.Alert, error) {
	bookmakers, err := s.bookmakers.ListByProject(ctx, s.pool, projectID)
	if err != nil {
		return nil, domain.ErrInternal("list bookmakers", err)
	}
	bonuses, err := s.bonuses.List(ctx, s.pool, repository.BonusFilter{ProjectID: projectID})
	if err != nil {
		return nil, domain.ErrInternal("list bonuses", err)
	}
	return analytics.DetectAlerts(s.Now(), bookmakers, bonuses), nil
}
