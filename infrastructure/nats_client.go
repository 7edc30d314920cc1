package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// StreamSpec describes a JetStream stream the publisher writes into
type StreamSpec struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
	// Duplicates is the window in which a repeated message id is dropped
	Duplicates time.Duration
}

// NATSClient publishes to JetStream over a single reconnecting connection
type NATSClient struct {
	servers string
	conn    *nats.Conn
	js      nats.JetStreamContext
}

func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{servers: servers}
}

func connectionOptions() []nats.Option {
	return []nats.Option{
		nats.Name(SourceService),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.WithError(err).Error("NATS async error")
		}),
	}
}

// Connect dials the servers and opens a JetStream context. ctx bounds the initial dial only.
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := connectionOptions()
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	conn, err := nats.Connect(c.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.conn = conn
	c.js = js
	log.WithField("servers", c.servers).Info("Connected to NATS JetStream")
	return nil
}

func (c *NATSClient) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

func (c *NATSClient) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// EnsureStream creates spec's stream, or widens an existing one to cover its subjects
func (c *NATSClient) EnsureStream(spec StreamSpec) error {
	if c.js == nil {
		return errors.New("not connected to NATS JetStream")
	}

	info, err := c.js.StreamInfo(spec.Name)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:        spec.Name,
			Subjects:    spec.Subjects,
			Retention:   nats.LimitsPolicy,
			Storage:     nats.FileStorage,
			MaxAge:      spec.MaxAge,
			Duplicates:  spec.Duplicates,
			Description: "dailybet ledger and line events",
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", spec.Name, err)
		}
		log.WithFields(log.Fields{"stream": spec.Name, "subjects": spec.Subjects}).Info("Created JetStream stream")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read stream %s: %w", spec.Name, err)
	}

	missing := false
	for _, subject := range spec.Subjects {
		if !slices.Contains(info.Config.Subjects, subject) {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	updated := info.Config
	updated.Subjects = spec.Subjects
	if _, err := c.js.UpdateStream(&updated); err != nil {
		return fmt.Errorf("failed to update stream %s subjects: %w", spec.Name, err)
	}
	log.WithField("stream", spec.Name).Info("Updated JetStream stream subjects")
	return nil
}

// Publish stores data on subject. msgID lets the stream drop redelivered copies.
func (c *NATSClient) Publish(ctx context.Context, subject, msgID string, data []byte) error {
	if c.js == nil {
		return errors.New("not connected to NATS JetStream")
	}

	ack, err := c.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(msgID))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject":   subject,
		"stream":    ack.Stream,
		"sequence":  ack.Sequence,
		"duplicate": ack.Duplicate,
	}).Debug("Published message to NATS")
	return nil
}
