package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type operationRepo struct{}

// NewOperationRepository returns a pgx-backed OperationRepository.
func NewOperationRepository() OperationRepository {
	return &operationRepo{}
}

func (r *operationRepo) FindExisting(ctx context.Context, db DBTX, bookmakerID uuid.UUID, externalID string) (*Operation, error) {
	row := db.QueryRow(ctx, `
		SELECT id, bookmaker_id, bonus_id, op_type, external_id, created_at
		FROM bonus_operations
		WHERE bookmaker_id = $1 AND external_id = $2`, bookmakerID, externalID)

	var op Operation
	err := row.Scan(&op.SeqID, &op.BookmakerID, &op.BonusID, &op.OpType, &op.ExternalID, &op.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan operation: %w", err)
	}
	return &op, nil
}

func (r *operationRepo) Insert(ctx context.Context, db DBTX, op Operation) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bonus_operations (bookmaker_id, bonus_id, op_type, external_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		op.BookmakerID, op.BonusID, op.OpType, op.ExternalID, op.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}
