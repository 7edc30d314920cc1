package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// kafkaBatchTimeout bounds how long a single event waits for a batch to fill.
// Send blocks until the batch is flushed, so the writer default of one second
// would stall every relayed event.
const kafkaBatchTimeout = 10 * time.Millisecond

// KafkaEventSink writes envelopes to a single topic keyed by event type
type KafkaEventSink struct {
	writer *kafka.Writer
}

// NewKafkaEventSink creates a writer for topic on brokers
func NewKafkaEventSink(brokers []string, topic string) *KafkaEventSink {
	return &KafkaEventSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Send writes the envelope keyed by event type so one type stays on one partition
func (s *KafkaEventSink) Send(ctx context.Context, msg OutboundMessage) error {
	eventType := msg.Event.Type()
	err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: msg.Body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source_service", Value: []byte(SourceService)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", s.writer.Topic, err)
	}

	log.WithFields(log.Fields{
		"topic":     s.writer.Topic,
		"eventType": eventType,
		"size":      len(msg.Body),
	}).Debug("Published message to Kafka")
	return nil
}

// Close flushes pending writes and closes the writer
func (s *KafkaEventSink) Close() error {
	return s.writer.Close()
}
