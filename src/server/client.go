package server

import (
	"time"

	"secmaster/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one subscriber of the progress stream. On registration the hub
// queues the replay window into send, then every new event; writePump
// drains send in that order. The stream is one-way: anything the browser
// sends is read only to keep deadlines and notice a close.
type Client struct {
	hub  *APIServer
	conn *websocket.Conn
	send chan models.MProgress
}

// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.hub.Logger.Warning("Progress stream closed: %v", err)
		} else {
			c.hub.Logger.Debug("Progress subscriber left")
		}
		return
	}
}

// -----------------------------------------------------------------------------

// writePump sends events and keepalive pings. A closed send channel means
// the hub dropped the client.
func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		var err error
		select {
		case event, open := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
				return
			}
			err = c.conn.WriteJSON(event)

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = c.conn.WriteMessage(websocket.PingMessage, nil)
		}

		if err != nil {
			c.hub.Logger.Debug("Progress write failed: %v", err)
			return
		}
	}
}
