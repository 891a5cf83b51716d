package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-presence/internal/chat"
	"chat-presence/internal/presence"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Inbound operations a connected client may invoke.
const (
	actionSendMessage    = "sendMessage"
	actionJoinAdminGroup = "joinAdminGroup"
)

// inboundOperation is the wire shape of a client-to-server frame.
type inboundOperation struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

// Client is a single live transport connection bound to an
// authenticated caller. The connection ID is assigned at upgrade time
// and never reused.
type Client struct {
	id     string
	caller presence.CallerIdentity
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	closed     int32 // atomic flag to track if client is closed
	sendClosed int32 // atomic flag to track if send channel is closed
}

func newClient(hub *Hub, conn *websocket.Conn, caller presence.CallerIdentity, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:     uuid.New().String(),
		caller: caller,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the transport-assigned connection identifier.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
	}
}

func (c *Client) closeSendChannel() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

// enqueue hands an already-serialized event to the write pump. A full
// send buffer closes the client; delivery failures stay inside the
// transport and are never surfaced to the triggering operation.
func (c *Client) enqueue(data []byte) bool {
	if c.isClosed() || atomic.LoadInt32(&c.sendClosed) == 1 {
		return false
	}

	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	default:
		c.logger.Warn("Send buffer full, closing client",
			"connectionId", c.id, "userId", c.caller.UserID)
		c.closeSendChannel()
		return false
	}
}

func (c *Client) readPump(chatHub *chat.Hub) {
	reason := "connection closed"
	defer func() {
		c.close()
		c.hub.removeClient(c)
		if err := chatHub.OnDisconnect(c.caller, c.id, reason); err != nil {
			c.logger.Error("Disconnect handling failed",
				"connectionId", c.id, "userId", c.caller.UserID, "error", err)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error",
					"connectionId", c.id, "userId", c.caller.UserID, "error", err)
				reason = "read error"
			}
			return
		}

		var op inboundOperation
		if err := json.Unmarshal(messageBytes, &op); err != nil {
			c.logger.Debug("Dropping malformed frame",
				"connectionId", c.id, "userId", c.caller.UserID, "error", err)
			continue
		}

		switch op.Action {
		case actionSendMessage:
			chatHub.SendMessage(c.caller, op.Text)
		case actionJoinAdminGroup:
			chatHub.JoinAdminGroup(c.caller, c.id)
		default:
			c.logger.Debug("Unknown action",
				"connectionId", c.id, "userId", c.caller.UserID, "action", op.Action)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	// readPump owns closing the connection.
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Write failed",
					"connectionId", c.id, "userId", c.caller.UserID, "error", err)
				return
			}

		case <-ticker.C:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
