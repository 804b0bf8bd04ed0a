package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bookmaker represents one bookmaker account within a project. Balance is
// the real account balance in integer cents, maintained by the cash ledger;
// this engine reads it and never computes it independently.
type Bookmaker struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency"`
	Balance   int64      `json:"balance"`
	CatalogID *uuid.UUID `json:"catalog_id,omitempty"` // bonus template catalog
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
