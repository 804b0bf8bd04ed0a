package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surehub/platform/internal/domain"
)

func creditedAt(bk uuid.UUID, credited time.Time) domain.Bonus {
	c := credited
	return domain.Bonus{
		ID:          uuid.New(),
		BookmakerID: bk,
		Title:       "welcome bonus",
		Amount:      20_000,
		Status:      domain.BonusStatusCredited,
		CreatedAt:   credited,
		CreditedAt:  &c,
	}
}

func alertsOf(alerts []Alert, typ AlertType) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestDetectAlerts_ExpiringSoon(t *testing.T) {
	now := analyticsNow
	bk := domain.Bookmaker{ID: uuid.New(), Name: "bet365"}

	t.Run("one day out is critical", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -5))
		exp := now.AddDate(0, 0, 1)
		b.ExpiresAt = &exp

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		expiring := alertsOf(alerts, AlertExpiringSoon)
		require.Len(t, expiring, 1)
		assert.Equal(t, SeverityCritical, expiring[0].Severity)
		assert.Equal(t, b.ID, *expiring[0].BonusID)
		assert.Equal(t, "bet365", expiring[0].BookmakerName)
	})

	t.Run("three days out is warning", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -5))
		exp := now.Add(60 * time.Hour)
		b.ExpiresAt = &exp

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		expiring := alertsOf(alerts, AlertExpiringSoon)
		require.Len(t, expiring, 1)
		assert.Equal(t, SeverityWarning, expiring[0].Severity)
	})

	t.Run("five days out produces none", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -5))
		exp := now.AddDate(0, 0, 5)
		b.ExpiresAt = &exp

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertExpiringSoon))
	})

	t.Run("already expired produces none", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -10))
		exp := now.AddDate(0, 0, -1)
		b.ExpiresAt = &exp

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertExpiringSoon))
	})

	t.Run("pending bonus produces none", func(t *testing.T) {
		exp := now.AddDate(0, 0, 1)
		b := domain.Bonus{
			ID:          uuid.New(),
			BookmakerID: bk.ID,
			Status:      domain.BonusStatusPending,
			ExpiresAt:   &exp,
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertExpiringSoon))
	})
}

func TestDetectAlerts_RolloverDeadline(t *testing.T) {
	now := analyticsNow
	bk := domain.Bookmaker{ID: uuid.New(), Name: "pinnacle"}

	t.Run("85 percent elapsed with one day left is critical", func(t *testing.T) {
		// 10-day deadline, credited 8.5 days ago.
		b := creditedAt(bk.ID, now.Add(-204*time.Hour))
		b.DeadlineDays = 10

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		deadline := alertsOf(alerts, AlertRolloverDeadline)
		require.Len(t, deadline, 1)
		assert.Equal(t, SeverityCritical, deadline[0].Severity)
	})

	t.Run("82 percent of a long deadline is warning", func(t *testing.T) {
		// 30-day deadline, credited 24.6 days ago: 5.4 days remain.
		b := creditedAt(bk.ID, now.Add(-590*time.Hour))
		b.DeadlineDays = 30

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		deadline := alertsOf(alerts, AlertRolloverDeadline)
		require.Len(t, deadline, 1)
		assert.Equal(t, SeverityWarning, deadline[0].Severity)
	})

	t.Run("below 80 percent produces none", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -5))
		b.DeadlineDays = 10

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertRolloverDeadline))
	})

	t.Run("past the deadline produces none", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -11))
		b.DeadlineDays = 10

		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertRolloverDeadline))
	})

	t.Run("no deadline produces none", func(t *testing.T) {
		b := creditedAt(bk.ID, now.AddDate(0, 0, -9))
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{b})
		assert.Empty(t, alertsOf(alerts, AlertRolloverDeadline))
	})
}

func TestDetectAlerts_MultipleProblems(t *testing.T) {
	now := analyticsNow
	bk := domain.Bookmaker{ID: uuid.New(), Name: "shadybet"}
	at := now.AddDate(0, 0, -10)

	problems := func(n int) []domain.Bonus {
		var out []domain.Bonus
		for i := 0; i < n; i++ {
			out = append(out, historyBonus(bk.ID, domain.BonusStatusReversed, 10_000, at))
		}
		return out
	}

	t.Run("two problems produce none", func(t *testing.T) {
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, problems(2))
		assert.Empty(t, alertsOf(alerts, AlertMultipleProblems))
	})

	t.Run("three problems is warning", func(t *testing.T) {
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, problems(3))
		got := alertsOf(alerts, AlertMultipleProblems)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityWarning, got[0].Severity)
	})

	t.Run("five problems is critical", func(t *testing.T) {
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, problems(5))
		got := alertsOf(alerts, AlertMultipleProblems)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityCritical, got[0].Severity)
	})

	t.Run("old problems fall out of the trailing window", func(t *testing.T) {
		old := now.AddDate(0, 0, -45)
		bonuses := []domain.Bonus{
			historyBonus(bk.ID, domain.BonusStatusReversed, 10_000, old),
			historyBonus(bk.ID, domain.BonusStatusReversed, 10_000, old),
			historyBonus(bk.ID, domain.BonusStatusReversed, 10_000, at),
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, bonuses)
		assert.Empty(t, alertsOf(alerts, AlertMultipleProblems))
	})
}

func TestDetectAlerts_ToxicBookmaker(t *testing.T) {
	now := analyticsNow
	bk := domain.Bookmaker{ID: uuid.New(), Name: "shadybet"}
	at := now.AddDate(0, 0, -20)

	t.Run("low icc with volume is warning", func(t *testing.T) {
		// received 3, converted 1, problems 1 → ICC 0, below 40.
		bonuses := []domain.Bonus{
			finalizedBonus(bk.ID, domain.ReasonRolloverCompleted, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
			creditedAt(bk.ID, at),
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, bonuses)
		got := alertsOf(alerts, AlertToxicBookmaker)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityWarning, got[0].Severity)
	})

	t.Run("negative icc is critical", func(t *testing.T) {
		bonuses := []domain.Bonus{
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, bonuses)
		got := alertsOf(alerts, AlertToxicBookmaker)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityCritical, got[0].Severity)
	})

	t.Run("insufficient volume produces none", func(t *testing.T) {
		bonuses := []domain.Bonus{
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonConfiscated, 10_000, 20_000, at),
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, bonuses)
		assert.Empty(t, alertsOf(alerts, AlertToxicBookmaker))
	})

	t.Run("healthy bookmaker produces none", func(t *testing.T) {
		bonuses := []domain.Bonus{
			finalizedBonus(bk.ID, domain.ReasonRolloverCompleted, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonRolloverCompleted, 10_000, 20_000, at),
			finalizedBonus(bk.ID, domain.ReasonRolloverCompleted, 10_000, 20_000, at),
		}
		alerts := DetectAlerts(now, []domain.Bookmaker{bk}, bonuses)
		assert.Empty(t, alertsOf(alerts, AlertToxicBookmaker))
	})
}

func TestDetectAlerts_CriticalSortedFirst(t *testing.T) {
	now := analyticsNow
	bk := domain.Bookmaker{ID: uuid.New(), Name: "bet365"}

	warning := creditedAt(bk.ID, now.AddDate(0, 0, -5))
	wExp := now.Add(60 * time.Hour)
	warning.ExpiresAt = &wExp

	critical := creditedAt(bk.ID, now.AddDate(0, 0, -5))
	cExp := now.Add(12 * time.Hour)
	critical.ExpiresAt = &cExp

	alerts := DetectAlerts(now, []domain.Bookmaker{bk}, []domain.Bonus{warning, critical})
	require.Len(t, alerts, 2)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, SeverityWarning, alerts[1].Severity)
}
