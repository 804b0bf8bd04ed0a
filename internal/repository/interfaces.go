package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surehub/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// BookmakerRepository provides access to bookmakers.
type BookmakerRepository interface {
	// FindByID returns a bookmaker by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bookmaker, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns
	// the bookmaker. Every lifecycle command locks the bookmaker first so the
	// one-outstanding-bonus invariant holds across concurrent sessions.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bookmaker, error)

	// Create inserts a new bookmaker.
	Create(ctx context.Context, db DBTX, bk *domain.Bookmaker) error

	// ListByProject returns a project's bookmakers ordered by name.
	ListByProject(ctx context.Context, db DBTX, projectID uuid.UUID) ([]domain.Bookmaker, error)
}

// BonusFilter narrows ListBonuses results. Zero values mean "no constraint".
type BonusFilter struct {
	ProjectID   uuid.UUID
	BookmakerID uuid.UUID
	Status      domain.BonusStatus
	Since       time.Time
	Until       time.Time
}

// BonusRepository provides access to bonuses.
type BonusRepository interface {
	// FindByID returns a bonus by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bonus, error)

	// FindOutstanding returns the bookmaker's pending or credited bonus,
	// or nil when none exists.
	FindOutstanding(ctx context.Context, db DBTX, bookmakerID uuid.UUID) (*domain.Bonus, error)

	// Insert creates a new bonus. Returns the inserted row.
	Insert(ctx context.Context, db DBTX, b *domain.Bonus) (*domain.Bonus, error)

	// Update rewrites the editable fields of a bonus. Status, reason and
	// lifecycle timestamps are written together in a single statement so a
	// transition is applied in full or not at all.
	Update(ctx context.Context, db DBTX, b *domain.Bonus) (*domain.Bonus, error)

	// Delete removes a bonus. Callers must have verified it is not finalized.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// List returns bonuses matching the filter, newest first.
	List(ctx context.Context, db DBTX, filter BonusFilter) ([]domain.Bonus, error)

	// ListCredited returns a bookmaker's currently credited bonuses.
	ListCredited(ctx context.Context, db DBTX, bookmakerID uuid.UUID) ([]domain.Bonus, error)
}

// TemplateRepository provides read-only access to the bonus template catalog.
type TemplateRepository interface {
	// FindByID returns a template by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusTemplate, error)

	// ListByCatalog returns the active templates of a catalog.
	ListByCatalog(ctx context.Context, db DBTX, catalogID uuid.UUID) ([]domain.BonusTemplate, error)
}

// Operation is one applied lifecycle command, recorded for idempotent
// replay of duplicate submissions.
type Operation struct {
	SeqID       int64
	BookmakerID uuid.UUID
	BonusID     uuid.UUID
	OpType      string
	ExternalID  string
	CreatedAt   time.Time
}

// OperationRepository provides access to the bonus_operations audit table.
type OperationRepository interface {
	// FindExisting checks the idempotency index for an already-applied
	// operation. Returns nil if no duplicate found.
	FindExisting(ctx context.Context, db DBTX, bookmakerID uuid.UUID, externalID string) (*Operation, error)

	// Insert records an applied operation (within the command's transaction).
	Insert(ctx context.Context, db DBTX, op Operation) error
}

// OutboxRow is an event_outbox row including its sequence ID.
type OutboxRow struct {
	SeqID int64
	domain.OutboxDraft
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublishedRows returns pending events for the outbox poller.
	FetchUnpublishedRows(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished removes events that have been handed to the broker.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
