package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/infra"
)

type bookmakerRepo struct{}

// NewBookmakerRepository returns a pgx-backed BookmakerRepository.
func NewBookmakerRepository() BookmakerRepository {
	return &bookmakerRepo{}
}

const bookmakerColumns = `id, project_id, name, currency, balance, catalog_id, created_at, updated_at`

func (r *bookmakerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bookmaker, error) {
	row := db.QueryRow(ctx, `
		SELECT `+bookmakerColumns+`
		FROM bookmakers WHERE id = $1`, id)
	return scanBookmaker(row)
}

func (r *bookmakerRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bookmaker, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+bookmakerColumns+`
		FROM bookmakers WHERE id = $1 FOR UPDATE`, id)
	return scanBookmaker(row)
}

func (r *bookmakerRepo) Create(ctx context.Context, db DBTX, bk *domain.Bookmaker) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bookmakers (id, project_id, name, currency, balance, catalog_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bk.ID,
		bk.ProjectID,
		bk.Name,
		bk.Currency,
		infra.Int64ToNumeric(bk.Balance),
		bk.CatalogID,
		bk.CreatedAt,
		bk.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bookmaker: %w", err)
	}
	return nil
}

func (r *bookmakerRepo) ListByProject(ctx context.Context, db DBTX, projectID uuid.UUID) ([]domain.Bookmaker, error) {
	rows, err := db.Query(ctx, `
		SELECT `+bookmakerColumns+`
		FROM bookmakers WHERE project_id = $1 ORDER BY name ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list bookmakers: %w", err)
	}
	defer rows.Close()

	var bks []domain.Bookmaker
	for rows.Next() {
		bk, err := scanBookmaker(rows)
		if err != nil {
			return nil, err
		}
		bks = append(bks, *bk)
	}
	return bks, rows.Err()
}

func scanBookmaker(row pgx.Row) (*domain.Bookmaker, error) {
	var bk domain.Bookmaker
	var balNum pgtype.Numeric
	err := row.Scan(&bk.ID, &bk.ProjectID, &bk.Name, &bk.Currency, &balNum,
		&bk.CatalogID, &bk.CreatedAt, &bk.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bookmaker: %w", err)
	}

	bk.Balance, err = infra.NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &bk, nil
}
