// Package pubsub fans graph events out to connected browsers over Server-Sent Events.
package pubsub

import (
	"context"
	"encoding/json"

	"github.com/ritzau/annotator/pkg/document"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic, e.g. "graph"
	Type    string          `json:"type"`    // Event type, e.g. "graph_changed"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic event id, sent as the SSE id
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// SubscribeFrom resumes after the event with id lastSeen
	SubscribeFrom(ctx context.Context, topic string, lastSeen int) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

const (
	// TopicGraph carries every change to the edited graph
	TopicGraph = "graph"

	EventGraphChanged = "graph_changed"
	EventSaveFailed   = "save_failed"
)

// GraphChanged is the payload of EventGraphChanged
type GraphChanged struct {
	Action   string            `json:"action"`  // Session action, e.g. "connect", "reload"
	Version  int               `json:"version"` // Session version after the change
	Points   int               `json:"points"`
	Lines    int               `json:"lines"`
	Document document.Document `json:"document"`
}

// SaveFailed is the payload of EventSaveFailed
type SaveFailed struct {
	Version int    `json:"version"`
	Error   string `json:"error"`
}
