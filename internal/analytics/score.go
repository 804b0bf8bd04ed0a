package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/surehub/platform/internal/domain"
)

// Classification buckets a bookmaker's historical bonus reliability.
type Classification string

const (
	ClassExcellent Classification = "excellent"
	ClassGood      Classification = "good"
	ClassAverage   Classification = "average"
	ClassToxic     Classification = "toxic"
)

// Rank orders classifications for display, best first.
func (c Classification) Rank() int {
	switch c {
	case ClassExcellent:
		return 0
	case ClassGood:
		return 1
	case ClassAverage:
		return 2
	default:
		return 3
	}
}

// Window is a closed interval over bonus relevant dates.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// TrailingWindow returns the window covering the given number of days up
// to and including now.
func TrailingWindow(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// BookmakerScore holds the reliability metrics for one bookmaker over a
// window. Monetary sums are integer cents.
type BookmakerScore struct {
	BookmakerID   uuid.UUID `json:"bookmaker_id"`
	BookmakerName string    `json:"bookmaker_name"`

	Received  int `json:"received"`
	Converted int `json:"converted"`
	Problems  int `json:"problems"`

	Extracted int64 `json:"extracted"`
	Invested  int64 `json:"invested"`
	Lost      int64 `json:"lost"`

	ICC            float64        `json:"icc"`
	RAROI          float64        `json:"raroi"`
	Classification Classification `json:"classification"`
}

// received means the bonus actually reached the bookmaker's account
// in-window: it was credited at some point, whatever its status today.
// Expired, failed and reversed outcomes stay in the denominator so a
// problem drags the index down instead of vanishing from it.
func received(b *domain.Bonus, w Window) bool {
	if b.CreditedAt == nil {
		return false
	}
	return w.Contains(b.RelevantDate())
}

func converted(b *domain.Bonus, w Window) bool {
	return b.Status == domain.BonusStatusFinalized &&
		b.FinalizeReason != nil &&
		*b.FinalizeReason == domain.ReasonRolloverCompleted &&
		w.Contains(b.RelevantDate())
}

// Problem reports whether the bonus ended badly: a history state, or a
// finalization with a problem reason.
func Problem(b *domain.Bonus) bool {
	switch b.Status {
	case domain.BonusStatusFailed, domain.BonusStatusExpired, domain.BonusStatusReversed:
		return true
	case domain.BonusStatusFinalized:
		return b.FinalizeReason != nil && b.FinalizeReason.Problem()
	}
	return false
}

func problemInWindow(b *domain.Bonus, w Window) bool {
	return Problem(b) && w.Contains(b.RelevantDate())
}

// Score computes the reliability metrics for one bookmaker from its bonus
// history restricted to the window.
func Score(bk *domain.Bookmaker, bonuses []domain.Bonus, w Window) BookmakerScore {
	score := BookmakerScore{BookmakerID: bk.ID, BookmakerName: bk.Name}

	for i := range bonuses {
		b := &bonuses[i]
		if received(b, w) {
			score.Received++
			if b.DepositAmount != nil {
				score.Invested += *b.DepositAmount
			}
		}
		if converted(b, w) {
			score.Converted++
			score.Extracted += b.Amount
		}
		if problemInWindow(b, w) {
			score.Problems++
			score.Lost += b.Amount
		}
	}

	score.ICC = computeICC(score.Converted, score.Problems, score.Received)
	score.RAROI = computeRAROI(score.Extracted, score.Lost, score.Invested)
	score.Classification = Classify(score.ICC, score.RAROI)
	return score
}

// computeICC is (converted − problems) / received × 100, clamped to
// [−100, 100]. Zero when nothing was received.
func computeICC(converted, problems, received int) float64 {
	if received == 0 {
		return 0
	}
	icc := decimal.NewFromInt(int64(converted - problems)).
		Div(decimal.NewFromInt(int64(received))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	switch {
	case icc.GreaterThan(decimal.NewFromInt(100)):
		return 100
	case icc.LessThan(decimal.NewFromInt(-100)):
		return -100
	}
	f, _ := icc.Float64()
	return f
}

// computeRAROI is (extracted − lost) / invested × 100, rounded to two
// decimals. Zero when nothing was invested.
func computeRAROI(extracted, lost, invested int64) float64 {
	if invested <= 0 {
		return 0
	}
	raroi := decimal.NewFromInt(extracted - lost).
		Div(decimal.NewFromInt(invested)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := raroi.Float64()
	return f
}

// Classify buckets ICC and RAROI, evaluated in order.
func Classify(icc, raroi float64) Classification {
	switch {
	case icc > 80 && raroi > 50:
		return ClassExcellent
	case icc > 60 && raroi > 20:
		return ClassGood
	case icc > 40 || raroi > 0:
		return ClassAverage
	default:
		return ClassToxic
	}
}

// Rank sorts scores for display: best classification first, then ICC
// descending within a class.
func Rank(scores []BookmakerScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		ri, rj := scores[i].Classification.Rank(), scores[j].Classification.Rank()
		if ri != rj {
			return ri < rj
		}
		return scores[i].ICC > scores[j].ICC
	})
}
