package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventBonusCreated   EventType = "surebet.bonus.created"
	EventBonusCredited  EventType = "surebet.bonus.credited"
	EventBonusFinalized EventType = "surebet.bonus.finalized"
	EventBonusCorrected EventType = "surebet.bonus.corrected"
	EventBonusEdited    EventType = "surebet.bonus.edited"
	EventBonusDeleted   EventType = "surebet.bonus.deleted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateBonus     AggregateType = "bonus"
	AggregateBookmaker AggregateType = "bookmaker"
)

// OutboxDraft is the payload written to the event_outbox table, in the
// same transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewBonusEvent builds an outbox draft for a bonus lifecycle event,
// partitioned by bookmaker so per-bookmaker ordering survives publication.
func NewBonusEvent(eventType EventType, b *Bonus, occurredAt time.Time) OutboxDraft {
	payload, _ := json.Marshal(b)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBonus,
		AggregateID:   b.ID.String(),
		EventType:     eventType,
		PartitionKey:  b.BookmakerID.String(),
		Payload:       payload,
		OccurredAt:    occurredAt,
	}
}
