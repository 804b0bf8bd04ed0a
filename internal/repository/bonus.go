package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/infra"
)

type bonusRepo struct{}

// NewBonusRepository returns a pgx-backed BonusRepository.
func NewBonusRepository() BonusRepository {
	return &bonusRepo{}
}

const bonusColumns = `id, project_id, bookmaker_id, title, currency, source, template_snapshot,
	       amount, deposit_amount, multiplier, rollover_base, min_odds, deadline_days,
	       rollover_target, rollover_progress, status, finalize_reason,
	       created_at, credited_at, expires_at, finalized_at`

func (r *bonusRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bonus, error) {
	row := db.QueryRow(ctx, `
		SELECT `+bonusColumns+`
		FROM bonuses WHERE id = $1`, id)
	return scanBonus(row)
}

func (r *bonusRepo) FindOutstanding(ctx context.Context, db DBTX, bookmakerID uuid.UUID) (*domain.Bonus, error) {
	row := db.QueryRow(ctx, `
		SELECT `+bonusColumns+`
		FROM bonuses
		WHERE bookmaker_id = $1 AND status IN ('pending', 'credited')`, bookmakerID)
	return scanBonus(row)
}

func (r *bonusRepo) Insert(ctx context.Context, db DBTX, b *domain.Bonus) (*domain.Bonus, error) {
	snapshot, err := marshalSnapshot(b.TemplateSnapshot)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `
		INSERT INTO bonuses
		  (id, project_id, bookmaker_id, title, currency, source, template_snapshot,
		   amount, deposit_amount, multiplier, rollover_base, min_odds, deadline_days,
		   rollover_target, rollover_progress, status, finalize_reason,
		   created_at, credited_at, expires_at, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING `+bonusColumns,
		b.ID, b.ProjectID, b.BookmakerID, b.Title, b.Currency, string(b.Source), snapshot,
		infra.Int64ToNumeric(b.Amount),
		infra.Int64PtrToNumeric(b.DepositAmount),
		b.Multiplier,
		nullableBase(b.RolloverBase),
		b.MinOdds,
		b.DeadlineDays,
		infra.Int64PtrToNumeric(b.RolloverTarget),
		infra.Int64ToNumeric(b.RolloverProgress),
		string(b.Status),
		nullableReason(b.FinalizeReason),
		b.CreatedAt, b.CreditedAt, b.ExpiresAt, b.FinalizedAt,
	)
	return scanBonus(row)
}

// Update rewrites a bonus in a single statement. Status, finalize_reason and
// the lifecycle timestamps always travel together so a transition can never
// be half applied.
func (r *bonusRepo) Update(ctx context.Context, db DBTX, b *domain.Bonus) (*domain.Bonus, error) {
	snapshot, err := marshalSnapshot(b.TemplateSnapshot)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `
		UPDATE bonuses SET
		  title = $2, currency = $3, template_snapshot = $4,
		  amount = $5, deposit_amount = $6, multiplier = $7, rollover_base = $8,
		  min_odds = $9, deadline_days = $10, rollover_target = $11,
		  status = $12, finalize_reason = $13,
		  credited_at = $14, expires_at = $15, finalized_at = $16
		WHERE id = $1
		RETURNING `+bonusColumns,
		b.ID, b.Title, b.Currency, snapshot,
		infra.Int64ToNumeric(b.Amount),
		infra.Int64PtrToNumeric(b.DepositAmount),
		b.Multiplier,
		nullableBase(b.RolloverBase),
		b.MinOdds,
		b.DeadlineDays,
		infra.Int64PtrToNumeric(b.RolloverTarget),
		string(b.Status),
		nullableReason(b.FinalizeReason),
		b.CreditedAt, b.ExpiresAt, b.FinalizedAt,
	)
	return scanBonus(row)
}

func (r *bonusRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM bonuses WHERE id = $1 AND status <> 'finalized'`, id)
	if err != nil {
		return fmt.Errorf("delete bonus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("bonus", id.String())
	}
	return nil
}

func (r *bonusRepo) List(ctx context.Context, db DBTX, filter BonusFilter) ([]domain.Bonus, error) {
	query := `SELECT ` + bonusColumns + ` FROM bonuses WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.ProjectID != uuid.Nil {
		query += fmt.Sprintf(" AND project_id = $%d", argIdx)
		args = append(args, filter.ProjectID)
		argIdx++
	}
	if filter.BookmakerID != uuid.Nil {
		query += fmt.Sprintf(" AND bookmaker_id = $%d", argIdx)
		args = append(args, filter.BookmakerID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.Since)
		argIdx++
	}
	if !filter.Until.IsZero() {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, filter.Until)
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bonuses: %w", err)
	}
	defer rows.Close()
	return collectBonuses(rows)
}

func (r *bonusRepo) ListCredited(ctx context.Context, db DBTX, bookmakerID uuid.UUID) ([]domain.Bonus, error) {
	rows, err := db.Query(ctx, `
		SELECT `+bonusColumns+`
		FROM bonuses
		WHERE bookmaker_id = $1 AND status = 'credited'
		ORDER BY credited_at ASC`, bookmakerID)
	if err != nil {
		return nil, fmt.Errorf("list credited bonuses: %w", err)
	}
	defer rows.Close()
	return collectBonuses(rows)
}

func collectBonuses(rows pgx.Rows) ([]domain.Bonus, error) {
	var bonuses []domain.Bonus
	for rows.Next() {
		b, err := scanBonus(rows)
		if err != nil {
			return nil, err
		}
		bonuses = append(bonuses, *b)
	}
	return bonuses, rows.Err()
}

func scanBonus(row pgx.Row) (*domain.Bonus, error) {
	var b domain.Bonus
	var source, status string
	var base, reason *string
	var snapshot []byte
	var amountNum, progressNum pgtype.Numeric
	var depositNum, targetNum pgtype.Numeric

	err := row.Scan(&b.ID, &b.ProjectID, &b.BookmakerID, &b.Title, &b.Currency, &source, &snapshot,
		&amountNum, &depositNum, &b.Multiplier, &base, &b.MinOdds, &b.DeadlineDays,
		&targetNum, &progressNum, &status, &reason,
		&b.CreatedAt, &b.CreditedAt, &b.ExpiresAt, &b.FinalizedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bonus: %w", err)
	}

	b.Source = domain.BonusSource(source)
	b.Status = domain.BonusStatus(status)
	if base != nil {
		b.RolloverBase = domain.RolloverBase(*base)
	}
	if reason != nil {
		fr := domain.FinalizeReason(*reason)
		b.FinalizeReason = &fr
	}
	if len(snapshot) > 0 {
		var snap domain.TemplateSnapshot
		if err := json.Unmarshal(snapshot, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal template snapshot: %w", err)
		}
		b.TemplateSnapshot = &snap
	}

	if b.Amount, err = infra.NumericToInt64(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if b.RolloverProgress, err = infra.NumericToInt64(progressNum); err != nil {
		return nil, fmt.Errorf("convert rollover_progress: %w", err)
	}
	if b.DepositAmount, err = infra.NumericToInt64Ptr(depositNum); err != nil {
		return nil, fmt.Errorf("convert deposit_amount: %w", err)
	}
	if b.RolloverTarget, err = infra.NumericToInt64Ptr(targetNum); err != nil {
		return nil, fmt.Errorf("convert rollover_target: %w", err)
	}

	return &b, nil
}

func marshalSnapshot(snap *domain.TemplateSnapshot) ([]byte, error) {
	if snap == nil {
		return nil, nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal template snapshot: %w", err)
	}
	return data, nil
}

func nullableBase(base domain.RolloverBase) *string {
	if base == "" {
		return nil
	}
	s := string(base)
	return &s
}

func nullableReason(reason *domain.FinalizeReason) *string {
	if reason == nil {
		return nil
	}
	s := string(*reason)
	return &s
}
