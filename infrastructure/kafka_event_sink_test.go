package infrastructure

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaEventSink(t *testing.T) {
	sink := NewKafkaEventSink([]string{"localhost:9092", "localhost:9093"}, "dailybet.events")
	require.NotNil(t, sink.writer)

	t.Run("flushes each event within ten milliseconds", func(t *testing.T) {
		assert.Equal(t, 10*time.Millisecond, sink.writer.BatchTimeout)
	})

	t.Run("keys by hash onto the configured topic", func(t *testing.T) {
		assert.Equal(t, "dailybet.events", sink.writer.Topic)
		assert.IsType(t, &kafka.Hash{}, sink.writer.Balancer)
		assert.True(t, sink.writer.AllowAutoTopicCreation)
	})

	t.Run("targets the brokers", func(t *testing.T) {
		assert.NotNil(t, sink.writer.Addr)
	})
}
