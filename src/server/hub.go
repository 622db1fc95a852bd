package server

import (
	"context"
	"net/http"

	"secmaster/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// RunHub owns the client set: it registers clients and fans progress events
// out to them until ctx is cancelled. It must be started once.
func (s *APIServer) RunHub(ctx context.Context) {
	defer func() {
		close(s.done)
		for client := range s.clients {
			s.drop(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Add(1)

			s.stateMutex.RLock()
			for _, event := range s.recent.All() {
				client.send <- event
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.drop(client)
			}

		case event := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumers are disconnected so the hub never blocks.
					s.drop(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) drop(client *Client) {
	delete(s.clients, client)
	s.connections.Add(-1)
	close(client.send)
}

// -----------------------------------------------------------------------------
// Progress reporting
// -----------------------------------------------------------------------------

// Report records a progress event and queues it for websocket clients.
// It never blocks the caller; events are dropped when the queue is full.
func (s *APIServer) Report(p models.MProgress) {
	s.stateMutex.Lock()
	s.recent.Append(p)
	s.stateMutex.Unlock()

	select {
	case s.broadcast <- p:
	default:
		s.Logger.Debug("Progress queue full, dropping event for %s", p.Symbol)
	}
}

// -----------------------------------------------------------------------------

// SetRunSummary records the outcome of the latest bar update run.
func (s *APIServer) SetRunSummary(summary models.MRunSummary) {
	s.stateMutex.Lock()
	s.lastRun = &summary
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan models.MProgress, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	case <-c.Request.Context().Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
