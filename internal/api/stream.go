package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dmehra/niftyrank/internal/pipeline"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Stream fans pipeline progress events out to websocket subscribers.
// Slow or broken connections are dropped rather than allowed to stall
// a running pipeline.
type Stream struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStream creates an event stream hub.
func NewStream(log *logger.Logger) *Stream {
	return &Stream{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// ServeHTTP upgrades the connection and registers it for events.
// GET /api/stream
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"clients": total,
	}).Debug("Websocket client connected")

	// Reader loop only detects disconnects; clients do not send data.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one progress event to every connected client.
func (s *Stream) Broadcast(ev pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// Close disconnects every client.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

func (s *Stream) drop(conn *websocket.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}
