package balance

import (
	"time"

	"github.com/google/uuid"

	"github.com/surehub/platform/internal/domain"
)

// Snapshot is the canonical operable-balance view of one bookmaker: the
// real account balance plus the sum of currently credited bonus amounts.
// Every screen renders this one computation; two screens disagreeing on
// "saldo operável" is a correctness bug, not a display issue.
type Snapshot struct {
	BookmakerID       uuid.UUID `json:"bookmaker_id"`
	Currency          string    `json:"currency"`
	RealBalance       int64     `json:"real_balance"`
	BonusContribution int64     `json:"bonus_contribution"`
	Operable          int64     `json:"operable"`
	ActiveBonuses     int       `json:"active_bonuses"`
	AsOf              time.Time `json:"as_of"`
}

// HasActiveBonus reports whether any credited bonus is outstanding,
// independent of the balance sign.
func (s Snapshot) HasActiveBonus() bool { return s.ActiveBonuses > 0 }

// Operable returns the operable balance: real balance plus the amounts of
// all credited bonuses. Wagering can zero out the real balance while a
// credited bonus is still legally active, so the bonus contribution keeps
// surfacing until the bonus is finalized.
func Operable(realBalance int64, bonuses []domain.Bonus) int64 {
	return realBalance + bonusContribution(bonuses)
}

// Compute builds the snapshot for a bookmaker from its credited bonuses.
func Compute(bk *domain.Bookmaker, bonuses []domain.Bonus, asOf time.Time) Snapshot {
	contribution := bonusContribution(bonuses)
	active := 0
	for i := range bonuses {
		if bonuses[i].CountsTowardBalance() {
			active++
		}
	}
	return Snapshot{
		BookmakerID:       bk.ID,
		Currency:          bk.Currency,
		RealBalance:       bk.Balance,
		BonusContribution: contribution,
		Operable:          bk.Balance + contribution,
		ActiveBonuses:     active,
		AsOf:              asOf,
	}
}

func bonusContribution(bonuses []domain.Bonus) int64 {
	var sum int64
	for i := range bonuses {
		if bonuses[i].CountsTowardBalance() {
			sum += bonuses[i].Amount
		}
	}
	return sum
}
