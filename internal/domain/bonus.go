package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BonusStatus tracks the lifecycle of a bookmaker bonus.
//
// pending and credited are the only states a bonus can hold while it is
// still operable. failed, expired and reversed are history states reached
// by operator correction. finalized is reached from credited only, and
// always carries a FinalizeReason.
type BonusStatus string

const (
	BonusStatusPending   BonusStatus = "pending"
	BonusStatusCredited  BonusStatus = "credited"
	BonusStatusFailed    BonusStatus = "failed"
	BonusStatusExpired   BonusStatus = "expired"
	BonusStatusReversed  BonusStatus = "reversed"
	BonusStatusFinalized BonusStatus = "finalized"
)

// Valid reports whether s is a known status.
func (s BonusStatus) Valid() bool {
	switch s {
	case BonusStatusPending, BonusStatusCredited, BonusStatusFailed,
		BonusStatusExpired, BonusStatusReversed, BonusStatusFinalized:
		return true
	}
	return false
}

// Outstanding reports whether the bonus still blocks the bookmaker from
// receiving a new one (at most one pending/credited bonus per bookmaker).
func (s BonusStatus) Outstanding() bool {
	return s == BonusStatusPending || s == BonusStatusCredited
}

// Correction reports whether s is a valid operator-correction target
// (history states reachable from any non-finalized status).
func (s BonusStatus) Correction() bool {
	return s == BonusStatusFailed || s == BonusStatusExpired || s == BonusStatusReversed
}

// FinalizeReason records why a credited bonus was closed out.
type FinalizeReason string

const (
	ReasonRolloverCompleted FinalizeReason = "rollover_completed"
	ReasonCycleCompleted    FinalizeReason = "cycle_completed"
	ReasonExpired           FinalizeReason = "expired"
	ReasonCancelledReversed FinalizeReason = "cancelled_reversed"

	// Reasons reachable through administrative paths rather than the
	// operator finalize dialog. Analytics treats them as problem outcomes.
	ReasonBonusConsumed  FinalizeReason = "bonus_consumed"
	ReasonAccountBlocked FinalizeReason = "account_blocked"
	ReasonLimitReached   FinalizeReason = "limit_reached"
	ReasonConfiscated    FinalizeReason = "confiscated"
)

// Valid reports whether r is a known finalize reason.
func (r FinalizeReason) Valid() bool {
	switch r {
	case ReasonRolloverCompleted, ReasonCycleCompleted, ReasonExpired,
		ReasonCancelledReversed, ReasonBonusConsumed, ReasonAccountBlocked,
		ReasonLimitReached, ReasonConfiscated:
		return true
	}
	return false
}

// Problem reports whether r counts as a problem outcome for reliability
// analytics.
func (r FinalizeReason) Problem() bool {
	switch r {
	case ReasonCancelledReversed, ReasonBonusConsumed, ReasonAccountBlocked,
		ReasonLimitReached, ReasonConfiscated:
		return true
	}
	return false
}

// BonusSource tells whether a bonus was entered by hand or derived from a
// catalog template.
type BonusSource string

const (
	SourceManual   BonusSource = "manual"
	SourceTemplate BonusSource = "template"
)

// Bonus represents one promotional credit extended by a bookmaker,
// scoped to a project. Monetary fields are integer cents.
type Bonus struct {
	ID          uuid.UUID   `json:"id"`
	ProjectID   uuid.UUID   `json:"project_id"`
	BookmakerID uuid.UUID   `json:"bookmaker_id"`
	Title       string      `json:"title"`
	Currency    string      `json:"currency"`
	Source      BonusSource `json:"source"`

	// Snapshot of the template used at creation time, if any. A value
	// copy, never a live reference: the catalog template may change or
	// be deleted without affecting historical bonuses.
	TemplateSnapshot *TemplateSnapshot `json:"template_snapshot,omitempty"`

	Amount        int64  `json:"amount"`
	DepositAmount *int64 `json:"deposit_amount,omitempty"` // informational only

	Multiplier       float64      `json:"multiplier"`
	RolloverBase     RolloverBase `json:"rollover_base,omitempty"`
	MinOdds          float64      `json:"min_odds,omitempty"`
	DeadlineDays     int          `json:"deadline_days,omitempty"`
	RolloverTarget   *int64       `json:"rollover_target,omitempty"`
	RolloverProgress int64        `json:"rollover_progress"` // fed externally, read-only here

	Status         BonusStatus     `json:"status"`
	FinalizeReason *FinalizeReason `json:"finalize_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CreditedAt  *time.Time `json:"credited_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// Outstanding reports whether this bonus blocks new bonus creation for its
// bookmaker.
func (b *Bonus) Outstanding() bool { return b.Status.Outstanding() }

// CountsTowardBalance reports whether the bonus amount contributes to the
// bookmaker's operable balance. Only credited bonuses count; finalization
// removes the contribution regardless of rollover progress.
func (b *Bonus) CountsTowardBalance() bool { return b.Status == BonusStatusCredited }

// RolloverPercent returns completion of the wagering requirement in
// [0, 100]. Zero when the bonus carries no rollover target.
func (b *Bonus) RolloverPercent() float64 {
	if b.RolloverTarget == nil || *b.RolloverTarget <= 0 {
		return 0
	}
	pct := float64(b.RolloverProgress) / float64(*b.RolloverTarget) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// RolloverComplete reports whether accrued wagering meets the target.
func (b *Bonus) RolloverComplete() bool {
	return b.RolloverTarget != nil && b.RolloverProgress >= *b.RolloverTarget
}

// RelevantDate is the date analytics uses to place a bonus in a window:
// credited_at, falling back to finalized_at, then created_at.
func (b *Bonus) RelevantDate() time.Time {
	if b.CreditedAt != nil {
		return *b.CreditedAt
	}
	if b.FinalizedAt != nil {
		return *b.FinalizedAt
	}
	return b.CreatedAt
}

// RecomputeRolloverTarget refreshes the stored target from the current
// amount, deposit, multiplier and base. Must be called whenever any of
// those change prior to persistence so the target is never stale.
func (b *Bonus) RecomputeRolloverTarget() {
	b.RolloverTarget = ComputeRolloverTarget(b.Amount, b.DepositAmount, b.Multiplier, b.RolloverBase)
}

// Validate checks field-level invariants before any write.
func (b *Bonus) Validate() error {
	if b.BookmakerID == uuid.Nil {
		return ErrValidation("bookmaker is required")
	}
	if b.ProjectID == uuid.Nil {
		return ErrValidation("project is required")
	}
	if err := ValidatePositiveAmount(b.Amount); err != nil {
		return ErrValidation(err.Error())
	}
	if b.DepositAmount != nil && *b.DepositAmount < 0 {
		return ErrValidation("deposit amount must not be negative")
	}
	if err := ValidateCurrency(b.Currency); err != nil {
		return ErrValidation(err.Error())
	}
	if !b.Status.Valid() {
		return ErrValidation("unknown bonus status: " + string(b.Status))
	}
	if b.Source != SourceManual && b.Source != SourceTemplate {
		return ErrValidation("unknown bonus source: " + string(b.Source))
	}
	if b.Multiplier < 0 {
		return ErrValidation("rollover multiplier must not be negative")
	}
	if b.Multiplier > 0 && !b.RolloverBase.Valid() {
		return ErrValidation("unknown rollover base: " + string(b.RolloverBase))
	}
	if b.MinOdds < 0 {
		return ErrValidation("minimum odds must not be negative")
	}
	if b.DeadlineDays < 0 {
		return ErrValidation("rollover deadline must not be negative")
	}

	// Reason required iff finalized.
	if b.Status == BonusStatusFinalized {
		if b.FinalizeReason == nil {
			return ErrValidation("finalize reason is required for a finalized bonus")
		}
		if !b.FinalizeReason.Valid() {
			return ErrValidation("unknown finalize reason: " + string(*b.FinalizeReason))
		}
	} else if b.FinalizeReason != nil {
		return ErrValidation("finalize reason is only allowed for a finalized bonus")
	}

	// credited_at accompanies the credited state (and survives into
	// finalization); it must never appear on a pending bonus.
	if b.Status == BonusStatusCredited && b.CreditedAt == nil {
		return ErrValidation("credited bonus requires a credited_at date")
	}
	if b.Status == BonusStatusPending && b.CreditedAt != nil {
		return ErrValidation("pending bonus must not carry a credited_at date")
	}

	return nil
}

// NormalizeTitle trims surrounding whitespace in place.
func (b *Bonus) NormalizeTitle() {
	b.Title = strings.TrimSpace(b.Title)
}
