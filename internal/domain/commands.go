package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommandResult is the return value from all lifecycle commands.
type CommandResult struct {
	Bonus      *Bonus
	Bookmaker  *Bookmaker
	Events     []OutboxDraft
	Idempotent bool // true if this was a duplicate submission replayed from the operation log
}

// CreateBonusParams holds the input for ExecuteCreate.
//
// AlreadyCredited reflects the operator's explicit confirmation that the
// bonus is visible in the account: confirmed creates go straight to
// credited with credited_at stamped, declined ones land in pending with no
// credited_at — the same record either way, never two.
type CreateBonusParams struct {
	ProjectID     uuid.UUID
	BookmakerID   uuid.UUID
	Title         string
	Amount        int64
	DepositAmount *int64

	Multiplier   float64
	RolloverBase RolloverBase
	MinOdds      float64
	DeadlineDays int

	// TemplateID, when set, marks the bonus template-derived: unset terms
	// are prefilled from the template and a frozen snapshot is captured.
	TemplateID *uuid.UUID

	AlreadyCredited bool
	CreditedAt      *time.Time // defaults to now when AlreadyCredited
	ExpiresAt       *time.Time

	ExternalOpID string
}

// ConfirmCreditParams holds the input for ExecuteConfirmCredit.
type ConfirmCreditParams struct {
	BonusID      uuid.UUID
	CreditedAt   *time.Time // defaults to now
	ExternalOpID string
}

// FinalizeParams holds the input for ExecuteFinalize.
type FinalizeParams struct {
	BonusID      uuid.UUID
	Reason       FinalizeReason
	ExternalOpID string
}

// CorrectStatusParams holds the input for ExecuteCorrectStatus.
type CorrectStatusParams struct {
	BonusID      uuid.UUID
	Target       BonusStatus // failed, expired or reversed
	ExternalOpID string
}

// EditBonusParams holds the input for ExecuteEdit. The edit dialog submits
// the full form, so fields carry replace semantics.
type EditBonusParams struct {
	BonusID       uuid.UUID
	Title         string
	Amount        int64
	DepositAmount *int64
	Multiplier    float64
	RolloverBase  RolloverBase
	MinOdds       float64
	DeadlineDays  int
	ExpiresAt     *time.Time
	ExternalOpID  string
}

// EditReasonParams holds the input for ExecuteEditReason, the only
// mutation permitted after finalization.
type EditReasonParams struct {
	BonusID      uuid.UUID
	Reason       FinalizeReason
	ExternalOpID string
}

// DeleteBonusParams holds the input for ExecuteDelete.
type DeleteBonusParams struct {
	BonusID      uuid.UUID
	ExternalOpID string
}
