// Package notify pushes domain events to connected websocket clients keyed by username.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dailybet/domain/events"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// Conn is the subset of *websocket.Conn the registry writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Message is the frame sent to clients
type Message struct {
	Type events.EventType `json:"type"`
	Data events.Event     `json:"data"`
}

// client serializes writes to one connection
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Registry tracks live connections per username. Delivery is best-effort.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]map[Conn]*client
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]map[Conn]*client),
	}
}

// Register adds conn under username. A user may hold several connections.
func (r *Registry) Register(username string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.clients[username]
	if !ok {
		conns = make(map[Conn]*client)
		r.clients[username] = conns
	}
	conns[conn] = &client{conn: conn}

	log.WithFields(log.Fields{
		"username":    username,
		"connections": len(conns),
	}).Debug("Registered websocket connection")
}

// Unregister removes conn. It reports whether the connection was registered.
func (r *Registry) Unregister(username string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.clients[username]
	if !ok {
		return false
	}
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(r.clients, username)
	}
	return true
}

// Count returns the number of connections held by username
func (r *Registry) Count(username string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[username])
}

// Notify sends event to every connection of username and returns how many received it
func (r *Registry) Notify(username string, event events.Event) int {
	data, err := encode(event)
	if err != nil {
		return 0
	}

	r.mu.RLock()
	targets := make(map[Conn]*client, len(r.clients[username]))
	for conn, c := range r.clients[username] {
		targets[conn] = c
	}
	r.mu.RUnlock()

	return r.deliver(map[string]map[Conn]*client{username: targets}, data)
}

// Broadcast sends event to every connection and returns how many received it
func (r *Registry) Broadcast(event events.Event) int {
	data, err := encode(event)
	if err != nil {
		return 0
	}

	r.mu.RLock()
	targets := make(map[string]map[Conn]*client, len(r.clients))
	for username, conns := range r.clients {
		copied := make(map[Conn]*client, len(conns))
		for conn, c := range conns {
			copied[conn] = c
		}
		targets[username] = copied
	}
	r.mu.RUnlock()

	return r.deliver(targets, data)
}

// HandleEvent routes user-scoped events to their recipient and broadcasts the rest
func (r *Registry) HandleEvent(ctx context.Context, event events.Event) error {
	if scoped, ok := event.(events.UserScoped); ok {
		r.Notify(scoped.Recipient(), event)
		return nil
	}
	r.Broadcast(event)
	return nil
}

// deliver writes data to targets, dropping connections whose write fails
func (r *Registry) deliver(targets map[string]map[Conn]*client, data []byte) int {
	delivered := 0
	for username, conns := range targets {
		for conn, c := range conns {
			if err := c.write(data); err != nil {
				log.WithFields(log.Fields{
					"username": username,
					"error":    err,
				}).Debug("Dropping websocket connection after failed write")
				if r.Unregister(username, conn) {
					_ = conn.Close()
				}
				continue
			}
			delivered++
		}
	}
	return delivered
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(Message{Type: event.Type(), Data: event})
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to encode websocket message")
		return nil, err
	}
	return data, nil
}
