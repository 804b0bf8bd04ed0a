//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// DoJSON performs an HTTP request with a JSON body and returns the response.
// The caller owns the response body.
func (env *TestEnv) DoJSON(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.Server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// GET performs a GET request.
func (env *TestEnv) GET(t *testing.T, path string) *http.Response {
	return env.DoJSON(t, http.MethodGet, path, nil)
}

// POST performs a POST request with a JSON body.
func (env *TestEnv) POST(t *testing.T, path string, body any) *http.Response {
	return env.DoJSON(t, http.MethodPost, path, body)
}

// PUT performs a PUT request with a JSON body.
func (env *TestEnv) PUT(t *testing.T, path string, body any) *http.Response {
	return env.DoJSON(t, http.MethodPut, path, body)
}

// PATCH performs a PATCH request with a JSON body.
func (env *TestEnv) PATCH(t *testing.T, path string, body any) *http.Response {
	return env.DoJSON(t, http.MethodPatch, path, body)
}

// DELETE performs a DELETE request.
func (env *TestEnv) DELETE(t *testing.T, path string) *http.Response {
	return env.DoJSON(t, http.MethodDelete, path, nil)
}

// DecodeBody decodes the response body into out and closes it.
func DecodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// RequireStatus asserts the response status code and, on mismatch, dumps the
// body for debugging.
func RequireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, data)
	}
}

// CreateBookmaker creates a bookmaker through the API and returns its ID.
func (env *TestEnv) CreateBookmaker(t *testing.T, projectID uuid.UUID, name string, balance int64) uuid.UUID {
	t.Helper()

	resp := env.POST(t, "/bookmakers", map[string]any{
		"project_id": projectID,
		"name":       name,
		"currency":   "EUR",
		"balance":    balance,
	})
	RequireStatus(t, resp, http.StatusCreated)

	var bk struct {
		ID uuid.UUID `json:"id"`
	}
	DecodeBody(t, resp, &bk)
	require.NotEqual(t, uuid.Nil, bk.ID)
	return bk.ID
}

// BonusEnvelope mirrors the bonus endpoint response shape.
type BonusEnvelope struct {
	Bonus struct {
		ID             uuid.UUID `json:"id"`
		BookmakerID    uuid.UUID `json:"bookmaker_id"`
		Title          string    `json:"title"`
		Amount         int64     `json:"amount"`
		Status         string    `json:"status"`
		FinalizeReason *string   `json:"finalize_reason"`
		RolloverTarget *int64    `json:"rollover_target"`
	} `json:"bonus"`
	Idempotent bool `json:"idempotent"`
}

// CreateBonus creates a pending bonus through the API and returns the envelope.
func (env *TestEnv) CreateBonus(t *testing.T, projectID, bookmakerID uuid.UUID, amount int64) BonusEnvelope {
	t.Helper()

	resp := env.POST(t, "/bonuses", map[string]any{
		"project_id":    projectID,
		"bookmaker_id":  bookmakerID,
		"title":         fmt.Sprintf("Reload %d", amount),
		"amount":        amount,
		"multiplier":    5,
		"rollover_base": "BONUS",
		"deadline_days": 7,
	})
	RequireStatus(t, resp, http.StatusCreated)

	var env2 BonusEnvelope
	DecodeBody(t, resp, &env2)
	require.NotEqual(t, uuid.Nil, env2.Bonus.ID)
	return env2
}
