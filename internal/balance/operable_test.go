package balance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surehub/platform/internal/domain"
)

func creditedBonus(bookmakerID uuid.UUID, amount int64) domain.Bonus {
	now := time.Now().UTC()
	return domain.Bonus{
		ID:          uuid.New(),
		BookmakerID: bookmakerID,
		Title:       "test bonus",
		Amount:      amount,
		Currency:    "BRL",
		Status:      domain.BonusStatusCredited,
		CreatedAt:   now,
		CreditedAt:  &now,
	}
}

func TestOperable(t *testing.T) {
	bkID := uuid.New()

	t.Run("zero real balance with credited bonus", func(t *testing.T) {
		bonuses := []domain.Bonus{creditedBonus(bkID, 20000)}
		assert.Equal(t, int64(20000), Operable(0, bonuses))
	})

	t.Run("after finalization the bonus stops counting", func(t *testing.T) {
		b := creditedBonus(bkID, 20000)
		b.Status = domain.BonusStatusFinalized
		reason := domain.ReasonBonusConsumed
		b.FinalizeReason = &reason
		assert.Equal(t, int64(0), Operable(0, []domain.Bonus{b}))
	})

	t.Run("pending bonus does not count", func(t *testing.T) {
		b := creditedBonus(bkID, 20000)
		b.Status = domain.BonusStatusPending
		b.CreditedAt = nil
		assert.Equal(t, int64(5000), Operable(5000, []domain.Bonus{b}))
	})

	t.Run("real balance plus multiple credited bonuses", func(t *testing.T) {
		bonuses := []domain.Bonus{
			creditedBonus(bkID, 10000),
			creditedBonus(bkID, 2500),
		}
		assert.Equal(t, int64(15500), Operable(3000, bonuses))
	})

	t.Run("negative real balance still sums", func(t *testing.T) {
		bonuses := []domain.Bonus{creditedBonus(bkID, 10000)}
		assert.Equal(t, int64(9000), Operable(-1000, bonuses))
	})
}

func TestCompute(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bk := &domain.Bookmaker{
		ID:       uuid.New(),
		Name:     "bet365",
		Currency: "BRL",
		Balance:  12000,
	}
	failed := creditedBonus(bk.ID, 9999)
	failed.Status = domain.BonusStatusFailed

	snap := Compute(bk, []domain.Bonus{
		creditedBonus(bk.ID, 20000),
		creditedBonus(bk.ID, 5000),
		failed,
	}, asOf)

	assert.Equal(t, bk.ID, snap.BookmakerID)
	assert.Equal(t, "BRL", snap.Currency)
	assert.Equal(t, int64(12000), snap.RealBalance)
	assert.Equal(t, int64(25000), snap.BonusContribution)
	assert.Equal(t, int64(37000), snap.Operable)
	assert.Equal(t, 2, snap.ActiveBonuses)
	assert.True(t, snap.HasActiveBonus())
	assert.Equal(t, asOf, snap.AsOf)
}

func TestProjectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	bkID := uuid.New()

	snap := Snapshot{
		BookmakerID:       bkID,
		Currency:          "EUR",
		RealBalance:       1000,
		BonusContribution: 20000,
		Operable:          21000,
		ActiveBonuses:     1,
		AsOf:              time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, UpdateProjection(ctx, store, snap, 0))

	got, err := GetProjection(ctx, store, bkID)
	require.NoError(t, err)
	assert.Equal(t, snap, *got)

	require.NoError(t, InvalidateProjection(ctx, store, bkID))
	_, err = GetProjection(ctx, store, bkID)
	assert.Error(t, err)
}

func TestInMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	_, err := store.Get(ctx, "k")
	assert.Error(t, err)

	require.NoError(t, store.Set(ctx, "k2", []byte("v"), 0))
	got, err := store.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
