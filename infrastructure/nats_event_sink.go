package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

// DomainEventStream is the JetStream stream holding every published subject
const DomainEventStream = "domain_events"

// NATSEventSink publishes envelopes to the subject mapped from the event type
type NATSEventSink struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
}

func NewNATSEventSink(natsClient *NATSClient, subjectMapper *EventSubjectMapper) *NATSEventSink {
	return &NATSEventSink{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
	}
}

// Send publishes the envelope to the event's subject, deduplicated on the envelope id
func (s *NATSEventSink) Send(ctx context.Context, msg OutboundMessage) error {
	subject := s.subjectMapper.MapEventToSubject(msg.Event)
	err := s.natsClient.Publish(ctx, subject, msg.ID, msg.Body)
	if errors.Is(err, nats.ErrNoStreamResponse) {
		// no stream bound to the subject
		return nil
	}
	return err
}

// EnsureDomainEventStream creates the domain_events stream covering every mapped subject
func (s *NATSEventSink) EnsureDomainEventStream() error {
	return s.natsClient.EnsureStream(StreamSpec{
		Name:       DomainEventStream,
		Subjects:   s.subjectMapper.GetAllSubjects(),
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
}

func (s *NATSEventSink) Close() error {
	return s.natsClient.Close()
}
