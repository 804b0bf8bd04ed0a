package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long a cached snapshot may serve reads. A cached
// value can lag the external wagering feed; readers treat it as advisory
// and re-read before acting on it.
const DefaultTTL = 5 * time.Minute

func projectionKey(bookmakerID uuid.UUID) string {
	return fmt.Sprintf("projection:operable:%s", bookmakerID)
}

// UpdateProjection caches a bookmaker's operable-balance snapshot for ttl.
// A non-positive ttl falls back to DefaultTTL.
func UpdateProjection(ctx context.Context, store Store, snap Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return SetJSON(ctx, store, projectionKey(snap.BookmakerID), snap, ttl)
}

// GetProjection retrieves a cached snapshot. Returns an error when absent
// or expired; callers fall back to recomputing from source.
func GetProjection(ctx context.Context, store Store, bookmakerID uuid.UUID) (*Snapshot, error) {
	var snap Snapshot
	if err := GetJSON(ctx, store, projectionKey(bookmakerID), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// InvalidateProjection removes a bookmaker's cached snapshot. Called on
// every lifecycle transition so no screen serves a stale operable balance.
func InvalidateProjection(ctx context.Context, store Store, bookmakerID uuid.UUID) error {
	return store.Delete(ctx, projectionKey(bookmakerID))
}
