// Package events fans catalog mutations out to live subscribers. Delivery is
// best effort: publishers never block and slow subscribers lose events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// Event describes a single catalog change.
type Event struct {
	Type       enums.CatalogEventType `json:"type"`
	ProductID  *uuid.UUID             `json:"product_id,omitempty"`
	Product    json.RawMessage        `json:"product,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher is the write side injected into services that mutate the catalog.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Subscriber is the read side used by streaming transports.
type Subscriber interface {
	Subscribe() (<-chan Event, func())
}

// Metrics receives delivery counters.
type Metrics interface {
	EventPublished(eventType string)
	EventDropped(eventType string)
}

// NewEvent stamps an event, encoding payload when provided.
func NewEvent(eventType enums.CatalogEventType, productID *uuid.UUID, payload any) (Event, error) {
	evt := Event{
		Type:       eventType,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		evt.Product = raw
	}
	return evt, nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
