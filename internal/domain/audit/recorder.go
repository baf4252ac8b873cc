// Package audit defines the chain-of-custody log for stock documents.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"slice/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionRequested Action = "requested"
	ActionShipped   Action = "shipped"
	ActionReceived  Action = "received"
	ActionAdjusted  Action = "adjusted"
)

// Entity types written to the audit log.
const (
	EntityTransfer   = "transfer"
	EntityAdjustment = "inventory_adjustment"
)

// Entry is one decoded audit record.
type Entry struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	Action     Action          `json:"action"`
	UserID     string          `json:"userId"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Recorder persists audit entries inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
	History(ctx context.Context, entityType string, entityID id.ID) ([]Entry, error)
}
