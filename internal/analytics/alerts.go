package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/surehub/platform/internal/domain"
)

// AlertType identifies what an alert is warning about.
type AlertType string

const (
	AlertExpiringSoon     AlertType = "expiring_soon"
	AlertRolloverDeadline AlertType = "rollover_deadline"
	AlertMultipleProblems AlertType = "multiple_problems"
	AlertToxicBookmaker   AlertType = "toxic_bookmaker"
)

// Severity grades an alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert flags a bonus or bookmaker needing operator attention.
type Alert struct {
	Type          AlertType  `json:"type"`
	Severity      Severity   `json:"severity"`
	BookmakerID   uuid.UUID  `json:"bookmaker_id"`
	BookmakerName string     `json:"bookmaker_name"`
	BonusID       *uuid.UUID `json:"bonus_id,omitempty"`
	Message       string     `json:"message"`
	DetectedAt    time.Time  `json:"detected_at"`
}

const (
	expiryHorizonDays = 3
	problemWindowDays = 30
	toxicWindowDays   = 60
)

// DetectAlerts runs the full alerting pass against now. Bonus-level rules
// fire per bonus; bookmaker-level rules aggregate over trailing windows.
// The result is sorted critical-first, detection order preserved within a
// severity.
func DetectAlerts(now time.Time, bookmakers []domain.Bookmaker, bonuses []domain.Bonus) []Alert {
	names := make(map[uuid.UUID]string, len(bookmakers))
	for i := range bookmakers {
		names[bookmakers[i].ID] = bookmakers[i].Name
	}
	byBookmaker := make(map[uuid.UUID][]domain.Bonus)
	for i := range bonuses {
		byBookmaker[bonuses[i].BookmakerID] = append(byBookmaker[bonuses[i].BookmakerID], bonuses[i])
	}

	var alerts []Alert
	for i := range bonuses {
		b := &bonuses[i]
		if a := checkExpiringSoon(now, b, names[b.BookmakerID]); a != nil {
			alerts = append(alerts, *a)
		}
		if a := checkRolloverDeadline(now, b, names[b.BookmakerID]); a != nil {
			alerts = append(alerts, *a)
		}
	}
	for i := range bookmakers {
		bk := &bookmakers[i]
		history := byBookmaker[bk.ID]
		if a := checkMultipleProblems(now, bk, history); a != nil {
			alerts = append(alerts, *a)
		}
		if a := checkToxicBookmaker(now, bk, history); a != nil {
			alerts = append(alerts, *a)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity == SeverityCritical && alerts[j].Severity != SeverityCritical
	})
	return alerts
}

// checkExpiringSoon fires for a credited bonus expiring within three days.
func checkExpiringSoon(now time.Time, b *domain.Bonus, name string) *Alert {
	if b.Status != domain.BonusStatusCredited || b.ExpiresAt == nil {
		return nil
	}
	remaining := b.ExpiresAt.Sub(now)
	if remaining < 0 || remaining > expiryHorizonDays*24*time.Hour {
		return nil
	}
	severity := SeverityWarning
	if remaining <= 24*time.Hour {
		severity = SeverityCritical
	}
	id := b.ID
	return &Alert{
		Type:          AlertExpiringSoon,
		Severity:      severity,
		BookmakerID:   b.BookmakerID,
		BookmakerName: name,
		BonusID:       &id,
		Message:       fmt.Sprintf("bonus %q expires in %s", b.Title, formatDays(remaining)),
		DetectedAt:    now,
	}
}

// checkRolloverDeadline fires when a credited bonus has burned 80% or more
// of its wagering deadline without completing.
func checkRolloverDeadline(now time.Time, b *domain.Bonus, name string) *Alert {
	if b.Status != domain.BonusStatusCredited || b.CreditedAt == nil || b.DeadlineDays <= 0 {
		return nil
	}
	deadline := time.Duration(b.DeadlineDays) * 24 * time.Hour
	elapsed := now.Sub(*b.CreditedAt)
	ratio := float64(elapsed) / float64(deadline)
	if ratio < 0.8 || ratio >= 1.0 {
		return nil
	}
	remaining := deadline - elapsed
	severity := SeverityWarning
	if remaining <= 2*24*time.Hour {
		severity = SeverityCritical
	}
	id := b.ID
	return &Alert{
		Type:          AlertRolloverDeadline,
		Severity:      severity,
		BookmakerID:   b.BookmakerID,
		BookmakerName: name,
		BonusID:       &id,
		Message:       fmt.Sprintf("bonus %q rollover deadline at %.0f%%, %s remaining", b.Title, ratio*100, formatDays(remaining)),
		DetectedAt:    now,
	}
}

// checkMultipleProblems fires when a bookmaker accumulates three or more
// problem outcomes in the trailing thirty days.
func checkMultipleProblems(now time.Time, bk *domain.Bookmaker, bonuses []domain.Bonus) *Alert {
	w := TrailingWindow(now, problemWindowDays)
	count := 0
	for i := range bonuses {
		if problemInWindow(&bonuses[i], w) {
			count++
		}
	}
	if count < 3 {
		return nil
	}
	severity := SeverityWarning
	if count >= 5 {
		severity = SeverityCritical
	}
	return &Alert{
		Type:          AlertMultipleProblems,
		Severity:      severity,
		BookmakerID:   bk.ID,
		BookmakerName: bk.Name,
		Message:       fmt.Sprintf("%d problem outcomes in the last %d days", count, problemWindowDays),
		DetectedAt:    now,
	}
}

// checkToxicBookmaker fires when a bookmaker with meaningful volume in the
// trailing sixty days scores below the average-classification ICC bar.
func checkToxicBookmaker(now time.Time, bk *domain.Bookmaker, bonuses []domain.Bonus) *Alert {
	score := Score(bk, bonuses, TrailingWindow(now, toxicWindowDays))
	if score.Received < 3 || score.ICC >= 40 {
		return nil
	}
	severity := SeverityWarning
	if score.ICC < 0 {
		severity = SeverityCritical
	}
	return &Alert{
		Type:          AlertToxicBookmaker,
		Severity:      severity,
		BookmakerID:   bk.ID,
		BookmakerName: bk.Name,
		Message:       fmt.Sprintf("ICC %.2f over %d bonuses in the last %d days", score.ICC, score.Received, toxicWindowDays),
		DetectedAt:    now,
	}
}

func formatDays(d time.Duration) string {
	days := d.Hours() / 24
	if days < 1 {
		return fmt.Sprintf("%.0fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", days)
}
