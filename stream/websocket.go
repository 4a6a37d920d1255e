// Package stream broadcasts completed detection results to connected
// WebSocket clients, the live-feed counterpart to the one-shot Analyze
// call. It is grounded on the host project's spectrum WebSocket handler:
// an Upgrader with permissive CheckOrigin, a per-connection write mutex
// and deadline, and a broadcast fan-out guarded by a single RWMutex over
// the client set.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client wraps one connected socket with the write lock the gorilla
// websocket package requires (a single connection must not be written to
// concurrently from two goroutines).
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Server accepts WebSocket upgrades and broadcasts every Publish call to
// all currently connected clients. The zero value is not usable; use
// NewServer.
type Server struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewServer returns an empty, ready-to-use Server.
func NewServer() *Server {
	return &Server{clients: make(map[*client]struct{})}
}

// Handler upgrades the request to a WebSocket and registers the
// connection for broadcasts until it closes or errors.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("icadtone stream: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	s.add(c)
	defer s.remove(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("icadtone stream: connection error: %v", err)
			}
			return
		}
		// Incoming messages carry no protocol of their own; read-and-drop
		// detects closure.
	}
}

// Publish sends a detection event to every connected client. Marshal
// failures are logged and skip the broadcast. Clients are written to one
// after another, each write bounded by writeTimeout; a client whose write
// fails or times out is dropped.
func (s *Server) Publish(kind string, payload interface{}) {
	if s == nil {
		return
	}
	msg := map[string]interface{}{"kind": kind, "data": payload}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("icadtone stream: failed to marshal broadcast: %v", err)
		return
	}

	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("icadtone stream: dropping client after write error: %v", err)
			s.remove(c)
		}
	}
}

// ClientCount reports the number of currently connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) add(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}
