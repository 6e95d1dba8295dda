package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/annotator/pkg/logging"
)

// ErrClosed is returned after the publisher has shut down
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer is how many events a slow subscriber may lag before events are dropped
const subscriberBuffer = 100

// TopicConfig controls what a topic remembers for late or returning subscribers
type TopicConfig struct {
	// History is how many recent events are kept; at most subscriberBuffer are replayed
	History int
	// StateEvent is the event type that carries the full state. A subscriber that
	// cannot be caught up from history is resynced from the latest one of these.
	StateEvent string
}

// GraphTopicConfig lets a reconnecting tab catch up on a short outage and
// gives a new tab the current graph
var GraphTopicConfig = TopicConfig{History: 64, StateEvent: EventGraphChanged}

// topic is the per-topic state. Event ids start at 1 and increase by one.
type topic struct {
	config  TopicConfig
	lastID  int
	history []Event // Oldest first, ids contiguous
	subs    map[*sseSubscription]bool
}

// SSEPublisher implements Publisher for Server-Sent Events streams
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topic
	closed bool
}

// NewSSEPublisher creates a publisher. Topics without ConfigureTopic keep no history.
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{topics: make(map[string]*topic)}
}

// topicLocked returns the named topic, creating it. Caller holds mu.
func (p *SSEPublisher) topicLocked(name string) *topic {
	t, ok := p.topics[name]
	if !ok {
		t = &topic{subs: make(map[*sseSubscription]bool)}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets how much history a topic keeps
func (p *SSEPublisher) ConfigureTopic(name string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.topicLocked(name)
	t.config = config
	t.trim()
}

// Subscribe is SubscribeFrom for a subscriber that has seen nothing
func (p *SSEPublisher) Subscribe(ctx context.Context, name string) (Subscription, error) {
	return p.SubscribeFrom(ctx, name, 0)
}

// SubscribeFrom subscribes to a topic. lastSeen is the id of the last event the
// client received (the SSE Last-Event-ID), 0 for a new client. Missed events are
// replayed in order before any new ones.
func (p *SSEPublisher) SubscribeFrom(ctx context.Context, name string, lastSeen int) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	t := p.topicLocked(name)
	sub := &sseSubscription{
		topic:     name,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	t.subs[sub] = true

	// Queued under the lock so a concurrent Publish cannot overtake the replay
	missed := t.since(lastSeen)
	for _, event := range missed {
		sub.events <- event
	}
	if len(missed) > 0 {
		logging.Debug("replayed events to subscriber", "topic", name, "lastSeen", lastSeen,
			"from", missed[0].Version, "to", missed[len(missed)-1].Version)
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// since returns the events after lastSeen. When history no longer reaches back
// that far, or lastSeen is from another publisher, it falls back to the latest
// state event and everything after it.
func (t *topic) since(lastSeen int) []Event {
	if lastSeen == t.lastID {
		return nil
	}

	if lastSeen > 0 && lastSeen < t.lastID && len(t.history) > 0 && t.history[0].Version <= lastSeen+1 {
		return append([]Event(nil), t.history[lastSeen+1-t.history[0].Version:]...)
	}

	start := -1
	for i := len(t.history) - 1; i >= 0; i-- {
		if t.history[i].Type == t.config.StateEvent {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	return append([]Event(nil), t.history[start:]...)
}

// trim drops the oldest events beyond the configured history
func (t *topic) trim() {
	limit := min(t.config.History, subscriberBuffer)
	if limit <= 0 {
		t.history = nil
		return
	}
	if len(t.history) > limit {
		t.history = append([]Event(nil), t.history[len(t.history)-limit:]...)
	}
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(name string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topicLocked(name)
	t.lastID++
	event := Event{Topic: name, Type: eventType, Data: payload, Version: t.lastID}

	t.history = append(t.history, event)
	t.trim()

	for sub := range t.subs {
		select {
		case sub.events <- event:
		default:
			// The client will resync from the state event when it reconnects
			logging.Warn("subscriber too slow, dropping event", "topic", name, "type", eventType, "version", event.Version)
		}
	}
	return nil
}

// Close ends every subscription; their event channels are closed
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = make(map[*sseSubscription]bool)
	}
	return nil
}

// Subscribers returns the number of live subscriptions to a topic
func (p *SSEPublisher) Subscribers(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[name]; ok {
		return len(t.subs)
	}
	return 0
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher

	once sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close unsubscribes. The channel is left open unless the publisher closed it.
func (s *sseSubscription) Close() error {
	s.once.Do(func() { s.publisher.unsubscribe(s) })
	return nil
}

// WriteSSE writes one event in the text/event-stream framing:
// "id: {version}\nevent: {type}\ndata: {json}\n\n". The id is what the browser
// sends back as Last-Event-ID when it reconnects.
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Version, event.Type, frame)
	return err
}
