package domain

// StatusChange is a tagged union of the two ways a bonus leaves its current
// status by operator action: finalization (reason mandatory) and correction
// to a history state (reason forbidden). The constructors make an invalid
// status/reason pairing unrepresentable.
type StatusChange struct {
	to     BonusStatus
	reason FinalizeReason
}

// NewFinalization builds the credited -> finalized change.
func NewFinalization(reason FinalizeReason) (StatusChange, error) {
	if !reason.Valid() {
		return StatusChange{}, ErrValidation("unknown finalize reason: " + string(reason))
	}
	return StatusChange{to: BonusStatusFinalized, reason: reason}, nil
}

// NewCorrection builds a change to one of the history states
// (failed, expired, reversed).
func NewCorrection(to BonusStatus) (StatusChange, error) {
	if !to.Correction() {
		return StatusChange{}, ErrValidation("status " + string(to) + " is not a valid correction target")
	}
	return StatusChange{to: to}, nil
}

// To returns the target status.
func (c StatusChange) To() BonusStatus { return c.to }

// Reason returns the finalize reason; valid only when To() is finalized.
func (c StatusChange) Reason() FinalizeReason { return c.reason }

// CanTransition reports whether a bonus may move from one status to
// another through an operator action:
//
//	pending   -> credited (credit confirmation); otherwise only deletable
//	credited  -> finalized (with reason) or a correction state
//	finalized -> nothing (only the reason itself may be edited afterwards)
//
// History states accept no further transitions; an operator fixes a wrong
// correction by editing the record, not by chaining corrections.
func CanTransition(from, to BonusStatus) bool {
	switch from {
	case BonusStatusPending:
		return to == BonusStatusCredited
	case BonusStatusCredited:
		return to == BonusStatusFinalized || to.Correction()
	default:
		return false
	}
}
