package chat

import (
	"log/slog"

	"chat-presence/internal/presence"
)

// Hub is the per-connection protocol handler. It translates transport
// lifecycle callbacks and inbound operations into registry calls and
// broadcaster invocations. The hub itself keeps no per-connection
// state; everything it needs arrives with each call.
type Hub struct {
	registry    *presence.Registry
	broadcaster *presence.Broadcaster
	transport   presence.Transport
	logger      *slog.Logger
}

// NewHub wires the protocol handler to the registry, broadcaster and
// transport. One hub is constructed per process.
func NewHub(registry *presence.Registry, broadcaster *presence.Broadcaster, transport presence.Transport, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry:    registry,
		broadcaster: broadcaster,
		transport:   transport,
		logger:      logger,
	}
}

// OnConnect handles a transport connection opening. The connection is
// registered, joins the Users group (and Admins when the caller carries
// the administrator role, evaluated once here and never re-checked
// mid-session), and the resulting transition is announced.
func (h *Hub) OnConnect(caller presence.CallerIdentity, connectionID string) error {
	transition, err := h.registry.Connect(caller.UserID, connectionID)
	if err != nil {
		return err
	}

	h.transport.AddToGroup(connectionID, presence.GroupUsers)
	if caller.IsAdmin() {
		h.transport.AddToGroup(connectionID, presence.GroupAdmins)
	}

	h.logger.Info("Connection opened",
		"userId", caller.UserID, "connectionId", connectionID, "transition", transition.String())

	h.broadcaster.Announce(transition, caller, connectionID)
	return nil
}

// OnDisconnect handles a transport connection closing. Group membership
// cleanup is the transport's responsibility once the connection closes;
// this only deregisters the connection and announces the transition.
func (h *Hub) OnDisconnect(caller presence.CallerIdentity, connectionID, reason string) error {
	transition, err := h.registry.Disconnect(caller.UserID, connectionID)
	if err != nil {
		return err
	}

	h.logger.Info("Connection closed",
		"userId", caller.UserID, "connectionId", connectionID,
		"reason", reason, "transition", transition.String())

	h.broadcaster.Announce(transition, caller, connectionID)
	return nil
}

// SendMessage broadcasts a chat message to the Users group, including
// the sender. It never touches presence state; content policy is owned
// by the messaging persistence path, not by this core.
func (h *Hub) SendMessage(caller presence.CallerIdentity, text string) {
	h.transport.BroadcastTo(presence.GroupUsers,
		presence.NewReceiveMessageEvent(caller.UserID, caller.DisplayName, text))
}

// JoinAdminGroup adds the caller's connection to the Admins group and
// confirms to the caller only. A non-admin caller is silently ignored
// rather than rejected, so error responses cannot leak role
// information.
func (h *Hub) JoinAdminGroup(caller presence.CallerIdentity, connectionID string) {
	if !caller.IsAdmin() {
		return
	}

	h.transport.AddToGroup(connectionID, presence.GroupAdmins)
	h.transport.SendTo(connectionID, presence.NewJoinedAdminGroupEvent())
}
