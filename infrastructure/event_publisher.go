package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dailybet/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SourceService identifies this process in event envelopes and broker client names
const SourceService = "dailybet"

// EventEnvelope is the wire format forwarded to the broker
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// OutboundMessage is one serialized envelope ready for a broker
type OutboundMessage struct {
	Event events.Event
	ID    string
	Body  []byte
}

// EventSink forwards serialized envelopes to an external broker
type EventSink interface {
	Send(ctx context.Context, msg OutboundMessage) error
	Close() error
}

// LocalEventHandler reacts to an event inside this process
type LocalEventHandler func(context.Context, events.Event) error

// DomainEventPublisher runs local handlers for an event, then forwards it to the broker sink.
// A nil sink keeps events in-process.
type DomainEventPublisher struct {
	sink          EventSink
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalEventHandler
	allHandlers   []LocalEventHandler
}

// NewDomainEventPublisher creates a publisher forwarding to sink
func NewDomainEventPublisher(sink EventSink) *DomainEventPublisher {
	return &DomainEventPublisher{
		sink:          sink,
		localHandlers: make(map[events.EventType][]LocalEventHandler),
	}
}

// Publish dispatches the event locally and then to the broker
func (p *DomainEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := append(append([]LocalEventHandler{}, p.localHandlers[eventType]...), p.allHandlers...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// Local handler errors never stop other handlers or the broker publish
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.sink == nil {
		return nil
	}

	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := OutboundMessage{Event: event, ID: envelope.EventID, Body: data}
	if err := p.sink.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to forward event %s: %w", eventType, err)
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
	}).Debug("Published event to broker")
	return nil
}

// RegisterLocalHandler registers a handler invoked in-process for one event type
func (p *DomainEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Debug("Registered local event handler")
}

// RegisterGlobalHandler registers a handler invoked for every event
func (p *DomainEventPublisher) RegisterGlobalHandler(handler LocalEventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allHandlers = append(p.allHandlers, handler)
}

// Close closes the broker sink
func (p *DomainEventPublisher) Close() error {
	if p.sink == nil {
		return nil
	}
	return p.sink.Close()
}

// NewEnvelope wraps event in an envelope with a fresh id
func NewEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}, nil
}
