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

type templateRepo struct{}

// NewTemplateRepository returns a pgx-backed TemplateRepository.
func NewTemplateRepository() TemplateRepository {
	return &templateRepo{}
}

const templateColumns = `id, catalog_id, title, percent, max_value, multiplier,
	       rollover_base, min_odds, deadline_days, active`

func (r *templateRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusTemplate, error) {
	row := db.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM bonus_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

func (r *templateRepo) ListByCatalog(ctx context.Context, db DBTX, catalogID uuid.UUID) ([]domain.BonusTemplate, error) {
	rows, err := db.Query(ctx, `
		SELECT `+templateColumns+`
		FROM bonus_templates
		WHERE catalog_id = $1 AND active
		ORDER BY title ASC`, catalogID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.BonusTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func scanTemplate(row pgx.Row) (*domain.BonusTemplate, error) {
	var t domain.BonusTemplate
	var base string
	var maxNum pgtype.Numeric

	err := row.Scan(&t.ID, &t.CatalogID, &t.Title, &t.Percent, &maxNum,
		&t.Multiplier, &base, &t.MinOdds, &t.DeadlineDays, &t.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}

	t.RolloverBase = domain.RolloverBase(base)
	if t.MaxValue, err = infra.NumericToInt64Ptr(maxNum); err != nil {
		return nil, fmt.Errorf("convert max_value: %w", err)
	}
	return &t, nil
}
