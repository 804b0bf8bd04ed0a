package domain

import "github.com/shopspring/decimal"

// RolloverBase selects what the wagering requirement is computed against.
// The DEPOSITO names come from the bookmaker-facing terminology and are
// stored verbatim.
type RolloverBase string

const (
	RolloverBaseDeposit      RolloverBase = "DEPOSITO"
	RolloverBaseBonus        RolloverBase = "BONUS"
	RolloverBaseDepositBonus RolloverBase = "DEPOSITO_BONUS"
)

// Valid reports whether rb is a known rollover base.
func (rb RolloverBase) Valid() bool {
	switch rb {
	case RolloverBaseDeposit, RolloverBaseBonus, RolloverBaseDepositBonus:
		return true
	}
	return false
}

// ComputeRolloverTarget returns the wagering requirement in cents, or nil
// when no rollover applies (multiplier <= 0).
//
// A missing deposit is treated as zero, not an error: the reference deposit
// is informational and optional even for deposit-based requirements.
// The result is rounded half-up to a whole cent.
func ComputeRolloverTarget(bonusAmount int64, depositAmount *int64, multiplier float64, base RolloverBase) *int64 {
	if multiplier <= 0 {
		return nil
	}

	var deposit int64
	if depositAmount != nil {
		deposit = *depositAmount
	}

	var baseCents int64
	switch base {
	case RolloverBaseBonus:
		baseCents = bonusAmount
	case RolloverBaseDeposit:
		baseCents = deposit
	case RolloverBaseDepositBonus:
		baseCents = deposit + bonusAmount
	default:
		baseCents = bonusAmount
	}

	target := decimal.NewFromInt(baseCents).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(0).
		IntPart()
	return &target
}

// TemplateBonusValue computes the bonus amount a template yields for a
// given deposit: deposit * percent / 100, rounded half-up to a cent and
// capped at maxValue when set.
func TemplateBonusValue(depositAmount int64, percent float64, maxValue *int64) int64 {
	value := decimal.NewFromInt(depositAmount).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	if maxValue != nil && value > *maxValue {
		return *maxValue
	}
	return value
}
