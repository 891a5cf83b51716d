package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"chat-presence/internal/chat"
	"chat-presence/internal/presence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS middleware in front.
		return true
	},
}

// Hub is the transport side of the realtime layer: it owns the live
// gorilla connections and the named groups events are broadcast to. It
// implements presence.Transport; everything above it only sees that
// capability.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connection ID -> client
	groups  map[string]map[string]*Client // group name -> connection ID -> client
	logger  *slog.Logger
}

// NewHub creates an empty transport hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

// removeClient drops the client from the connection table and from
// every group it joined. Group cleanup on close is the transport's
// responsibility, not the protocol handler's.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, client.id)
	for group, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// AddToGroup implements presence.Transport.
func (h *Hub) AddToGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][connectionID] = client
}

// BroadcastTo implements presence.Transport.
func (h *Hub) BroadcastTo(group string, event *presence.Event) {
	h.broadcast(group, "", event)
}

// BroadcastToExcept implements presence.Transport.
func (h *Hub) BroadcastToExcept(group, exceptConnectionID string, event *presence.Event) {
	h.broadcast(group, exceptConnectionID, event)
}

func (h *Hub) broadcast(group, exceptConnectionID string, event *presence.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[group]))
	for connectionID, client := range h.groups[group] {
		if connectionID == exceptConnectionID {
			continue
		}
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.enqueue(data)
	}
}

// SendTo implements presence.Transport.
func (h *Hub) SendTo(connectionID string, event *presence.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if ok {
		client.enqueue(data)
	}
}

// ConnectionCount returns the number of live transport connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every live connection. Per-connection cleanup runs
// through the normal read pump teardown path.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.close()
		client.conn.Close()
	}
}

// ServeWS upgrades an authenticated HTTP request to a websocket
// connection, registers it with the transport and hands the lifecycle
// to the protocol handler.
func ServeWS(hub *Hub, chatHub *chat.Hub, w http.ResponseWriter, r *http.Request, caller presence.CallerIdentity) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("Failed to upgrade WebSocket connection",
			"userId", caller.UserID, "error", err)
		return
	}

	client := newClient(hub, conn, caller, hub.logger)
	hub.addClient(client)

	if err := chatHub.OnConnect(caller, client.id); err != nil {
		hub.logger.Error("Connect handling failed",
			"userId", caller.UserID, "connectionId", client.id, "error", err)
		hub.removeClient(client)
		conn.Close()
		return
	}

	hub.logger.Info("WebSocket connection established",
		"connectionId", client.id, "userId", caller.UserID)

	go client.writePump()
	go client.readPump(chatHub)
}
