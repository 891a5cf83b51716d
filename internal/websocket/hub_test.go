package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-presence/internal/presence"
)

// newTestClient builds a client with a buffered send channel and no
// underlying connection; enqueue is the only delivery path under test.
func newTestClient(id string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     id,
		caller: presence.CallerIdentity{UserID: "user-" + id, DisplayName: id, Role: presence.RoleUser},
		send:   make(chan []byte, 8),
		logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func drain(c *Client) []*presence.Event {
	var events []*presence.Event
	for {
		select {
		case data := <-c.send:
			var event presence.Event
			if err := json.Unmarshal(data, &event); err == nil {
				events = append(events, &event)
			}
		default:
			return events
		}
	}
}

func TestBroadcastToReachesGroupMembersOnly(t *testing.T) {
	hub := NewHub(nil)
	inGroup := newTestClient("c1")
	alsoInGroup := newTestClient("c2")
	outsider := newTestClient("c3")

	for _, client := range []*Client{inGroup, alsoInGroup, outsider} {
		hub.addClient(client)
	}
	hub.AddToGroup("c1", presence.GroupUsers)
	hub.AddToGroup("c2", presence.GroupUsers)

	hub.BroadcastTo(presence.GroupUsers, presence.NewReceiveMessageEvent("u", "n", "hi"))

	require.Len(t, drain(inGroup), 1)
	require.Len(t, drain(alsoInGroup), 1)
	assert.Empty(t, drain(outsider))
}

func TestBroadcastToExceptSkipsOrigin(t *testing.T) {
	hub := NewHub(nil)
	origin := newTestClient("c1")
	other := newTestClient("c2")

	hub.addClient(origin)
	hub.addClient(other)
	hub.AddToGroup("c1", presence.GroupUsers)
	hub.AddToGroup("c2", presence.GroupUsers)

	hub.BroadcastToExcept(presence.GroupUsers, "c1", presence.NewUserConnectedEvent("u", "n"))

	assert.Empty(t, drain(origin))
	events := drain(other)
	require.Len(t, events, 1)
	assert.Equal(t, presence.EventUserConnected, events[0].Type)
}

func TestSendToTargetsSingleConnection(t *testing.T) {
	hub := NewHub(nil)
	target := newTestClient("c1")
	bystander := newTestClient("c2")

	hub.addClient(target)
	hub.addClient(bystander)

	hub.SendTo("c1", presence.NewJoinedAdminGroupEvent())

	events := drain(target)
	require.Len(t, events, 1)
	assert.Equal(t, presence.EventJoinedAdminGroup, events[0].Type)
	assert.Empty(t, drain(bystander))

	// Sending to an unknown connection is a silent no-op.
	hub.SendTo("ghost", presence.NewJoinedAdminGroupEvent())
}

func TestAddToGroupIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient("c1")
	hub.addClient(client)

	hub.AddToGroup("c1", presence.GroupAdmins)
	hub.AddToGroup("c1", presence.GroupAdmins)

	hub.BroadcastTo(presence.GroupAdmins, presence.NewUserStatusChangedEvent("u", "n", true))
	assert.Len(t, drain(client), 1)
}

func TestAddToGroupUnknownConnectionIgnored(t *testing.T) {
	hub := NewHub(nil)
	hub.AddToGroup("ghost", presence.GroupUsers)

	hub.BroadcastTo(presence.GroupUsers, presence.NewReceiveMessageEvent("u", "n", "hi"))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestRemoveClientClearsGroupMembership(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient("c1")
	hub.addClient(client)
	hub.AddToGroup("c1", presence.GroupUsers)
	hub.AddToGroup("c1", presence.GroupAdmins)

	hub.removeClient(client)

	assert.Equal(t, 0, hub.ConnectionCount())
	hub.BroadcastTo(presence.GroupUsers, presence.NewReceiveMessageEvent("u", "n", "hi"))
	hub.BroadcastTo(presence.GroupAdmins, presence.NewUserStatusChangedEvent("u", "n", false))
	assert.Empty(t, drain(client))
}

// A closed client must not receive deliveries, and a delivery to a
// closed client must not affect other group members.
func TestBroadcastSkipsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	healthy := newTestClient("c1")
	broken := newTestClient("c2")

	hub.addClient(healthy)
	hub.addClient(broken)
	hub.AddToGroup("c1", presence.GroupUsers)
	hub.AddToGroup("c2", presence.GroupUsers)

	broken.close()

	hub.BroadcastTo(presence.GroupUsers, presence.NewReceiveMessageEvent("u", "n", "hi"))

	assert.Len(t, drain(healthy), 1)
	assert.Empty(t, drain(broken))
}
