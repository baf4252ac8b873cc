// Package events defines domain events written to the transactional outbox.
package events

import (
	"context"

	"slice/internal/core/id"
)

// Event types.
const (
	TypeTransferRequested = "transfer.requested"
	TypeTransferShipped   = "transfer.shipped"
	TypeTransferReceived  = "transfer.received"
	TypeSaleProcessed     = "sale.processed"
	TypeWasteRecorded     = "waste.recorded"
	TypePurchaseReceived  = "purchase.received"
	TypeStockAdjusted     = "stock.adjusted"
	TypeStockLow          = "stock.low"
)

// Aggregate types.
const (
	AggregateTransfer   = "transfer"
	AggregateSale       = "sale"
	AggregateWaste      = "waste"
	AggregatePurchase   = "purchase"
	AggregateStock      = "stock"
	AggregateAdjustment = "adjustment"
)

// Event is a fact that happened inside a committed transaction.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// Publisher stores events atomically with the business change.
// Implementations require an active transaction in ctx.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
