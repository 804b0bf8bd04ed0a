//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surehub/platform/test/integration/testutil"
)

type balanceResp struct {
	BookmakerID       uuid.UUID `json:"bookmaker_id"`
	Currency          string    `json:"currency"`
	RealBalance       int64     `json:"real_balance"`
	BonusContribution int64     `json:"bonus_contribution"`
	Operable          int64     `json:"operable"`
	ActiveBonuses     int       `json:"active_bonuses"`
}

func getBalance(t *testing.T, env *testutil.TestEnv, bkID uuid.UUID) balanceResp {
	t.Helper()
	resp := env.GET(t, "/bookmakers/"+bkID.String()+"/balance")
	testutil.RequireStatus(t, resp, http.StatusOK)
	var out balanceResp
	testutil.DecodeBody(t, resp, &out)
	return out
}

func TestOperableBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	projectID := uuid.New()

	t.Run("pending bonus does not count", func(t *testing.T) {
		bkID := env.CreateBookmaker(t, projectID, "Bet365", 50000)
		env.CreateBonus(t, projectID, bkID, 20000)

		snap := getBalance(t, env, bkID)
		assert.Equal(t, int64(50000), snap.RealBalance)
		assert.Equal(t, int64(0), snap.BonusContribution)
		assert.Equal(t, int64(50000), snap.Operable)
		assert.Equal(t, 0, snap.ActiveBonuses)
	})

	t.Run("credited bonus adds its amount", func(t *testing.T) {
		bkID := env.CreateBookmaker(t, projectID, "Pinnacle", 50000)
		created := env.CreateBonus(t, projectID, bkID, 20000)

		resp := env.POST(t, "/bonuses/"+created.Bonus.ID.String()+"/confirm-credit", nil)
		testutil.RequireStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		snap := getBalance(t, env, bkID)
		assert.Equal(t, int64(20000), snap.BonusContribution)
		assert.Equal(t, int64(70000), snap.Operable)
		assert.Equal(t, 1, snap.ActiveBonuses)
	})

	t.Run("finalization removes the contribution", func(t *testing.T) {
		bkID := env.CreateBookmaker(t, projectID, "Betano", 50000)
		created := env.CreateBonus(t, projectID, bkID, 20000)
		bonusPath := "/bonuses/" + created.Bonus.ID.String()

		resp := env.POST(t, bonusPath+"/confirm-credit", nil)
		testutil.RequireStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		// Prime the cache, then mutate; the projection must not go stale.
		before := getBalance(t, env, bkID)
		require.Equal(t, int64(70000), before.Operable)

		resp = env.POST(t, bonusPath+"/finalize", map[string]any{"reason": "rollover_completed"})
		testutil.RequireStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		after := getBalance(t, env, bkID)
		assert.Equal(t, int64(0), after.BonusContribution)
		assert.Equal(t, int64(50000), after.Operable)
		assert.Equal(t, 0, after.ActiveBonuses)
	})

	t.Run("unknown bookmaker returns 404", func(t *testing.T) {
		resp := env.GET(t, "/bookmakers/"+uuid.NewString()+"/balance")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
