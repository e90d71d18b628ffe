// Package events hands finished orders off to the provisioning pipeline.
package events

import (
	"context"
	"time"
)

// TopicOrderCreated is the Kafka topic the provisioning workers consume.
const TopicOrderCreated = "order.created"

// OrderCreated describes a freshly placed order. The provisioning pipeline
// installs the game server from this record.
type OrderCreated struct {
	EventID    string    `json:"event_id"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	PlanID     int64     `json:"plan_id"`
	LocationID int64     `json:"location_id"`
	Slots      int       `json:"slots"`
	Port       int       `json:"port"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Publisher delivers order events downstream.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, evt OrderCreated) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
