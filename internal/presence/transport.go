package presence

import (
	"context"
	"time"
)

// Transport is the group-broadcast capability this core depends on.
// Implementations own connection fan-out and delivery; a delivery
// failure to an individual connection stays inside the transport and
// never reaches registry state. Group membership is released by the
// transport itself when a connection closes.
type Transport interface {
	// AddToGroup places a connection into a named group. Adding an
	// already-member connection is a no-op.
	AddToGroup(connectionID, group string)

	// BroadcastTo sends an event to every connection in a group.
	BroadcastTo(group string, event *Event)

	// BroadcastToExcept sends an event to every connection in a group
	// except the named one.
	BroadcastToExcept(group, exceptConnectionID string, event *Event)

	// SendTo sends an event to a single connection.
	SendTo(connectionID string, event *Event)
}

// StatusUpdate is the presence change record published to downstream
// consumers (see cmd/presence-worker).
type StatusUpdate struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	IsOnline  bool      `json:"isOnline"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusPublisher pushes presence status updates to an external event
// stream. Publishing is best-effort from the caller's perspective.
type StatusPublisher interface {
	PublishStatusUpdate(ctx context.Context, update StatusUpdate) error
}
