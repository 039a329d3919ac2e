package model

import (
	"fmt"
	"time"
)

// CatalogEventType names what happened to the catalog.
type CatalogEventType string

const (
	ProductCreated CatalogEventType = "product.created"
	ProductDeleted CatalogEventType = "product.deleted"
)

// CatalogEvent is published on the change feed after a successful add or delete.
// Deleted events carry the lower-cased name that was matched and how many rows went away.
type CatalogEvent struct {
	ID         string           `json:"id"`
	Type       CatalogEventType `json:"type"`
	ProductID  uint             `json:"product_id,omitempty"`
	Name       string           `json:"name"`
	Version    string           `json:"version,omitempty"`
	Price      int64            `json:"price,omitempty"`
	Removed    int64            `json:"removed,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Validate does the minimum so relays and consumers can drop garbage.
func (e CatalogEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	switch e.Type {
	case ProductCreated:
		if e.ProductID == 0 {
			return fmt.Errorf("product_id is required")
		}
	case ProductDeleted:
		if e.Removed <= 0 {
			return fmt.Errorf("removed must be > 0")
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
