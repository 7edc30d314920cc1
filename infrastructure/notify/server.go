package notify

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 45 * time.Second
	maxReadBytes = 4096
)

// Server upgrades HTTP requests to websocket connections held by the registry
type Server struct {
	registry *Registry
	upgrader websocket.Upgrader
}

// NewServer creates a websocket server. checkOrigin reports whether an Origin header is allowed.
func NewServer(registry *Registry, checkOrigin func(origin string) bool) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || checkOrigin == nil || checkOrigin(origin)
			},
		},
	}
}

// Serve upgrades the request and blocks until the client disconnects.
// The caller has already authenticated username.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, username string) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	s.registry.Register(username, conn)
	log.WithField("username", username).Info("Websocket client connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		s.registry.Unregister(username, conn)
		_ = conn.Close()
		log.WithField("username", username).Info("Websocket client disconnected")
	}()

	go s.keepAlive(conn, done)

	conn.SetReadLimit(maxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Server push only; client frames are read and discarded
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (s *Server) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
