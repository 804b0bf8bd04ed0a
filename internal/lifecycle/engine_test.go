package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surehub/platform/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Engine, *fakeStore, *domain.Bookmaker) {
	t.Helper()
	s := newFakeStore()
	e := newTestEngine(s)
	e.Now = func() time.Time { return testNow }

	bk := &domain.Bookmaker{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Name:      "Bet365",
		Currency:  "BRL",
		Balance:   100_000,
	}
	s.bookmakers[bk.ID] = bk
	return e, s, bk
}

func createParams(bk *domain.Bookmaker) domain.CreateBonusParams {
	return domain.CreateBonusParams{
		ProjectID:    bk.ProjectID,
		BookmakerID:  bk.ID,
		Title:        "  Welcome bonus  ",
		Amount:       20_000,
		Multiplier:   3,
		RolloverBase: domain.RolloverBaseBonus,
		DeadlineDays: 30,
	}
}

func TestExecuteCreate_Pending(t *testing.T) {
	e, s, bk := setup(t)

	res, err := e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.NoError(t, err)

	b := res.Bonus
	assert.Equal(t, domain.BonusStatusPending, b.Status)
	assert.Nil(t, b.CreditedAt)
	assert.Equal(t, "Welcome bonus", b.Title)
	assert.Equal(t, "BRL", b.Currency, "currency inherited from bookmaker")
	require.NotNil(t, b.RolloverTarget)
	assert.Equal(t, int64(60_000), *b.RolloverTarget)

	require.Len(t, s.outbox, 1)
	assert.Equal(t, domain.EventBonusCreated, s.outbox[0].EventType)
}

func TestExecuteCreate_AlreadyCredited(t *testing.T) {
	e, s, bk := setup(t)

	params := createParams(bk)
	params.AlreadyCredited = true
	res, err := e.ExecuteCreate(context.Background(), nil, params)
	require.NoError(t, err)

	b := res.Bonus
	assert.Equal(t, domain.BonusStatusCredited, b.Status)
	require.NotNil(t, b.CreditedAt)
	assert.Equal(t, testNow, *b.CreditedAt)
	require.NotNil(t, b.ExpiresAt, "expiry derived from deadline days")
	assert.Equal(t, testNow.AddDate(0, 0, 30), *b.ExpiresAt)

	require.Len(t, s.outbox, 1)
	assert.Equal(t, domain.EventBonusCredited, s.outbox[0].EventType)
}

func TestExecuteCreate_ConflictOnOutstandingBonus(t *testing.T) {
	e, s, bk := setup(t)

	_, err := e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.NoError(t, err)
	require.Len(t, s.bonuses, 1)

	_, err = e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.Error(t, err)
	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Len(t, s.bonuses, 1, "existing records unchanged")
}

func TestExecuteCreate_ConflictOnIndexBackstop(t *testing.T) {
	// A concurrent session can insert between the FindOutstanding check and
	// ours; the partial unique index fires and must surface as a conflict,
	// not an internal error.
	e, s, bk := setup(t)
	s.insertErr = &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "uniq_bonuses_outstanding",
	}

	_, err := e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// Any other unique violation stays an internal failure.
	s.insertErr = &pgconn.PgError{Code: "23505", ConstraintName: "bonuses_pkey"}
	_, err = e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.Error(t, err)
	assert.False(t, errors.As(err, &appErr))
}

func TestExecuteCreate_Idempotent(t *testing.T) {
	e, s, bk := setup(t)

	params := createParams(bk)
	params.ExternalOpID = "op-123"
	first, err := e.ExecuteCreate(context.Background(), nil, params)
	require.NoError(t, err)

	// Same submission again: replayed, not duplicated (and not a conflict).
	second, err := e.ExecuteCreate(context.Background(), nil, params)
	require.NoError(t, err)
	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Bonus.ID, second.Bonus.ID)
	assert.Len(t, s.bonuses, 1)
	assert.Len(t, s.outbox, 1)
}

func TestExecuteCreate_FromTemplate(t *testing.T) {
	e, s, bk := setup(t)

	maxVal := int64(50_000)
	tpl := &domain.BonusTemplate{
		ID:           uuid.New(),
		CatalogID:    uuid.New(),
		Title:        "100% up to 500",
		Percent:      100,
		MaxValue:     &maxVal,
		Multiplier:   5,
		RolloverBase: domain.RolloverBaseDepositBonus,
		MinOdds:      1.65,
		DeadlineDays: 14,
		Active:       true,
	}
	s.templates[tpl.ID] = tpl

	deposit := int64(30_000)
	params := domain.CreateBonusParams{
		ProjectID:     bk.ProjectID,
		BookmakerID:   bk.ID,
		DepositAmount: &deposit,
		TemplateID:    &tpl.ID,
	}
	res, err := e.ExecuteCreate(context.Background(), nil, params)
	require.NoError(t, err)

	b := res.Bonus
	assert.Equal(t, domain.SourceTemplate, b.Source)
	assert.Equal(t, "100% up to 500", b.Title)
	assert.Equal(t, int64(30_000), b.Amount, "100% of deposit under the cap")
	assert.Equal(t, float64(5), b.Multiplier)
	assert.Equal(t, 14, b.DeadlineDays)
	require.NotNil(t, b.TemplateSnapshot)
	assert.Equal(t, tpl.ID, b.TemplateSnapshot.TemplateID)
	// deposit(300) + bonus(300) times 5
	require.NotNil(t, b.RolloverTarget)
	assert.Equal(t, int64(300_000), *b.RolloverTarget)
}

func TestExecuteCreate_TemplateCapApplies(t *testing.T) {
	e, s, bk := setup(t)

	maxVal := int64(10_000)
	tpl := &domain.BonusTemplate{
		ID: uuid.New(), CatalogID: uuid.New(), Title: "capped",
		Percent: 100, MaxValue: &maxVal, Multiplier: 2,
		RolloverBase: domain.RolloverBaseBonus, Active: true,
	}
	s.templates[tpl.ID] = tpl

	deposit := int64(80_000)
	res, err := e.ExecuteCreate(context.Background(), nil, domain.CreateBonusParams{
		ProjectID: bk.ProjectID, BookmakerID: bk.ID,
		DepositAmount: &deposit, TemplateID: &tpl.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), res.Bonus.Amount)
}

func createPending(t *testing.T, e *Engine, bk *domain.Bookmaker) *domain.Bonus {
	t.Helper()
	res, err := e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.NoError(t, err)
	return res.Bonus
}

func createCredited(t *testing.T, e *Engine, bk *domain.Bookmaker) *domain.Bonus {
	t.Helper()
	params := createParams(bk)
	params.AlreadyCredited = true
	res, err := e.ExecuteCreate(context.Background(), nil, params)
	require.NoError(t, err)
	return res.Bonus
}

func TestExecuteConfirmCredit(t *testing.T) {
	e, _, bk := setup(t)
	b := createPending(t, e, bk)

	res, err := e.ExecuteConfirmCredit(context.Background(), nil, domain.ConfirmCreditParams{BonusID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.BonusStatusCredited, res.Bonus.Status)
	require.NotNil(t, res.Bonus.CreditedAt)
	assert.Equal(t, testNow, *res.Bonus.CreditedAt)
	require.NotNil(t, res.Bonus.ExpiresAt)
}

func TestExecuteConfirmCredit_RejectsNonPending(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)

	_, err := e.ExecuteConfirmCredit(context.Background(), nil, domain.ConfirmCreditParams{BonusID: b.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot credit")
}

func TestExecuteFinalize(t *testing.T) {
	e, s, bk := setup(t)
	b := createCredited(t, e, bk)

	res, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID,
		Reason:  domain.ReasonRolloverCompleted,
	})
	require.NoError(t, err)

	fin := res.Bonus
	assert.Equal(t, domain.BonusStatusFinalized, fin.Status)
	require.NotNil(t, fin.FinalizeReason)
	assert.Equal(t, domain.ReasonRolloverCompleted, *fin.FinalizeReason)
	require.NotNil(t, fin.FinalizedAt)
	assert.Equal(t, testNow, *fin.FinalizedAt)
	require.NotNil(t, fin.CreditedAt, "credited_at survives finalization")

	assert.Equal(t, domain.EventBonusFinalized, s.outbox[len(s.outbox)-1].EventType)
}

func TestExecuteFinalize_RequiresCredited(t *testing.T) {
	e, _, bk := setup(t)
	b := createPending(t, e, bk)

	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID,
		Reason:  domain.ReasonExpired,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot finalize")
}

func TestExecuteFinalize_RejectsUnknownReason(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)

	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID,
		Reason:  "gave_up",
	})
	require.Error(t, err)
}

func TestExecuteFinalize_FreesBookmakerForNewBonus(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)

	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID, Reason: domain.ReasonCycleCompleted,
	})
	require.NoError(t, err)

	// The bookmaker is eligible again as soon as nothing is outstanding.
	_, err = e.ExecuteCreate(context.Background(), nil, createParams(bk))
	require.NoError(t, err)
}

func TestExecuteCorrectStatus(t *testing.T) {
	e, _, bk := setup(t)

	for _, target := range []domain.BonusStatus{
		domain.BonusStatusFailed, domain.BonusStatusExpired, domain.BonusStatusReversed,
	} {
		t.Run(string(target), func(t *testing.T) {
			b := createCredited(t, e, bk)
			res, err := e.ExecuteCorrectStatus(context.Background(), nil, domain.CorrectStatusParams{
				BonusID: b.ID, Target: target,
			})
			require.NoError(t, err)
			assert.Equal(t, target, res.Bonus.Status)
			assert.Nil(t, res.Bonus.FinalizeReason)
		})
	}
}

func TestExecuteCorrectStatus_RejectsFinalizedTarget(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)

	_, err := e.ExecuteCorrectStatus(context.Background(), nil, domain.CorrectStatusParams{
		BonusID: b.ID, Target: domain.BonusStatusFinalized,
	})
	require.Error(t, err)
}

func TestExecuteCorrectStatus_RejectsPendingSource(t *testing.T) {
	e, _, bk := setup(t)
	b := createPending(t, e, bk)

	_, err := e.ExecuteCorrectStatus(context.Background(), nil, domain.CorrectStatusParams{
		BonusID: b.ID, Target: domain.BonusStatusFailed,
	})
	require.Error(t, err)
}

func TestExecuteEdit(t *testing.T) {
	e, _, bk := setup(t)
	b := createPending(t, e, bk)

	deposit := int64(10_000)
	res, err := e.ExecuteEdit(context.Background(), nil, domain.EditBonusParams{
		BonusID:       b.ID,
		Title:         "Reload bonus",
		Amount:        15_000,
		DepositAmount: &deposit,
		Multiplier:    4,
		RolloverBase:  domain.RolloverBaseDepositBonus,
		DeadlineDays:  10,
	})
	require.NoError(t, err)

	edited := res.Bonus
	assert.Equal(t, "Reload bonus", edited.Title)
	assert.Equal(t, int64(15_000), edited.Amount)
	require.NotNil(t, edited.RolloverTarget)
	// (100 + 150) * 4
	assert.Equal(t, int64(100_000), *edited.RolloverTarget)
}

func TestExecuteEdit_Idempotent(t *testing.T) {
	e, _, bk := setup(t)
	b := createPending(t, e, bk)

	params := domain.EditBonusParams{
		BonusID: b.ID, Title: "Edited", Amount: 20_000,
		ExternalOpID: "edit-1",
	}
	first, err := e.ExecuteEdit(context.Background(), nil, params)
	require.NoError(t, err)

	second, err := e.ExecuteEdit(context.Background(), nil, params)
	require.NoError(t, err)
	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Bonus.Title, second.Bonus.Title)
}

func TestExecuteEdit_RejectsFinalized(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)
	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID, Reason: domain.ReasonExpired,
	})
	require.NoError(t, err)

	_, err = e.ExecuteEdit(context.Background(), nil, domain.EditBonusParams{
		BonusID: b.ID, Title: "nope", Amount: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestExecuteEditReason(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)
	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID, Reason: domain.ReasonExpired,
	})
	require.NoError(t, err)

	res, err := e.ExecuteEditReason(context.Background(), nil, domain.EditReasonParams{
		BonusID: b.ID, Reason: domain.ReasonCancelledReversed,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Bonus.FinalizeReason)
	assert.Equal(t, domain.ReasonCancelledReversed, *res.Bonus.FinalizeReason)
	assert.Equal(t, domain.BonusStatusFinalized, res.Bonus.Status)
}

func TestExecuteEditReason_RejectsNonFinalized(t *testing.T) {
	e, _, bk := setup(t)
	b := createCredited(t, e, bk)

	_, err := e.ExecuteEditReason(context.Background(), nil, domain.EditReasonParams{
		BonusID: b.ID, Reason: domain.ReasonExpired,
	})
	require.Error(t, err)
}

func TestExecuteDelete(t *testing.T) {
	e, s, bk := setup(t)
	b := createPending(t, e, bk)

	_, err := e.ExecuteDelete(context.Background(), nil, domain.DeleteBonusParams{BonusID: b.ID})
	require.NoError(t, err)
	assert.Empty(t, s.bonuses)
	assert.Equal(t, domain.EventBonusDeleted, s.outbox[len(s.outbox)-1].EventType)
}

func TestExecuteDelete_RejectsFinalized(t *testing.T) {
	e, s, bk := setup(t)
	b := createCredited(t, e, bk)
	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: b.ID, Reason: domain.ReasonRolloverCompleted,
	})
	require.NoError(t, err)

	_, err = e.ExecuteDelete(context.Background(), nil, domain.DeleteBonusParams{BonusID: b.ID})
	require.Error(t, err)
	assert.Len(t, s.bonuses, 1, "finalized history retained")
}

func TestUnknownBonusIsNotFound(t *testing.T) {
	e, _, _ := setup(t)

	_, err := e.ExecuteFinalize(context.Background(), nil, domain.FinalizeParams{
		BonusID: uuid.New(), Reason: domain.ReasonExpired,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
