package domain

import (
	"github.com/google/uuid"
)

// BonusTemplate is a read-only catalog entry used to prefill a new bonus.
// It is consumed at creation time only; afterwards the bonus keeps its own
// frozen TemplateSnapshot.
type BonusTemplate struct {
	ID           uuid.UUID    `json:"id"`
	CatalogID    uuid.UUID    `json:"catalog_id"`
	Title        string       `json:"title"`
	Percent      float64      `json:"percent"` // percentage of deposit
	MaxValue     *int64       `json:"max_value,omitempty"`
	Multiplier   float64      `json:"multiplier"`
	RolloverBase RolloverBase `json:"rollover_base"`
	MinOdds      float64      `json:"min_odds"`
	DeadlineDays int          `json:"deadline_days"`
	Active       bool         `json:"active"`
}

// TemplateSnapshot is the immutable value copy of the template fields
// captured into a bonus at creation time, kept for audit.
type TemplateSnapshot struct {
	TemplateID   uuid.UUID    `json:"template_id"`
	Title        string       `json:"title"`
	Percent      float64      `json:"percent"`
	MaxValue     *int64       `json:"max_value,omitempty"`
	Multiplier   float64      `json:"multiplier"`
	RolloverBase RolloverBase `json:"rollover_base"`
	MinOdds      float64      `json:"min_odds"`
	DeadlineDays int          `json:"deadline_days"`
}

// Snapshot captures the template's current fields as an immutable value.
func (t *BonusTemplate) Snapshot() TemplateSnapshot {
	snap := TemplateSnapshot{
		TemplateID:   t.ID,
		Title:        t.Title,
		Percent:      t.Percent,
		Multiplier:   t.Multiplier,
		RolloverBase: t.RolloverBase,
		MinOdds:      t.MinOdds,
		DeadlineDays: t.DeadlineDays,
	}
	if t.MaxValue != nil {
		v := *t.MaxValue
		snap.MaxValue = &v
	}
	return snap
}
