package presence

import (
	"context"
	"log/slog"
	"time"
)

const publishTimeout = 5 * time.Second

// Broadcaster translates registry transitions into outbound
// notifications. At most one announcement is made per logical
// transition: additional devices of an already-online user produce no
// presence traffic at all.
type Broadcaster struct {
	transport Transport
	publisher StatusPublisher
	logger    *slog.Logger
}

// NewBroadcaster creates a broadcaster over the given transport.
// publisher may be nil, in which case status updates are only
// delivered to connected clients.
func NewBroadcaster(transport Transport, publisher StatusPublisher, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		transport: transport,
		publisher: publisher,
		logger:    logger,
	}
}

// Announce emits the notifications for a transition reported by the
// registry. The registry mutation is already complete when Announce
// runs, so a failed delivery can never corrupt presence state.
//
//   - TransitionBecameOnline: UserConnected to all other connections,
//     UserStatusChanged(online) to the Admins group.
//   - TransitionBecameOffline: UserDisconnected to all other
//     connections, UserStatusChanged(offline) to the Admins group.
//   - Everything else: silence.
func (b *Broadcaster) Announce(transition Transition, caller CallerIdentity, connectionID string) {
	switch transition {
	case TransitionBecameOnline:
		b.transport.BroadcastToExcept(GroupUsers, connectionID,
			NewUserConnectedEvent(caller.UserID, caller.DisplayName))
		b.transport.BroadcastTo(GroupAdmins,
			NewUserStatusChangedEvent(caller.UserID, caller.DisplayName, true))
		b.publish(caller, true)

	case TransitionBecameOffline:
		b.transport.BroadcastToExcept(GroupUsers, connectionID,
			NewUserDisconnectedEvent(caller.UserID, caller.DisplayName))
		b.transport.BroadcastTo(GroupAdmins,
			NewUserStatusChangedEvent(caller.UserID, caller.DisplayName, false))
		b.publish(caller, false)
	}
}

// publish pushes the status change to the external stream,
// fire-and-forget. Publish failures are logged and never propagate to
// the triggering operation.
func (b *Broadcaster) publish(caller CallerIdentity, isOnline bool) {
	if b.publisher == nil {
		return
	}

	update := StatusUpdate{
		UserID:    caller.UserID,
		UserName:  caller.DisplayName,
		IsOnline:  isOnline,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := b.publisher.PublishStatusUpdate(ctx, update); err != nil {
			b.logger.Error("Failed to publish status update",
				"userId", update.UserID, "isOnline", update.IsOnline, "error", err)
		}
	}()
}
