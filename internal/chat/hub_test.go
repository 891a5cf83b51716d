package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-presence/internal/presence"
)

// fakeTransport records group membership and deliveries.
type fakeTransport struct {
	mu         sync.Mutex
	groups     map[string]map[string]bool
	broadcasts []deliveredEvent
	directs    []deliveredEvent
}

type deliveredEvent struct {
	group  string
	except string
	target string
	event  *presence.Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{groups: make(map[string]map[string]bool)}
}

func (ft *fakeTransport) AddToGroup(connectionID, group string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.groups[group] == nil {
		ft.groups[group] = make(map[string]bool)
	}
	ft.groups[group][connectionID] = true
}

func (ft *fakeTransport) BroadcastTo(group string, event *presence.Event) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.broadcasts = append(ft.broadcasts, deliveredEvent{group: group, event: event})
}

func (ft *fakeTransport) BroadcastToExcept(group, exceptConnectionID string, event *presence.Event) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.broadcasts = append(ft.broadcasts, deliveredEvent{group: group, except: exceptConnectionID, event: event})
}

func (ft *fakeTransport) SendTo(connectionID string, event *presence.Event) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.directs = append(ft.directs, deliveredEvent{target: connectionID, event: event})
}

func (ft *fakeTransport) inGroup(connectionID, group string) bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.groups[group][connectionID]
}

func (ft *fakeTransport) broadcastsOfType(eventType string) []deliveredEvent {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	var result []deliveredEvent
	for _, delivered := range ft.broadcasts {
		if delivered.event.Type == eventType {
			result = append(result, delivered)
		}
	}
	return result
}

func newTestHub() (*Hub, *presence.Registry, *fakeTransport) {
	registry := presence.NewRegistry()
	transport := newFakeTransport()
	broadcaster := presence.NewBroadcaster(transport, nil, nil)
	return NewHub(registry, broadcaster, transport, nil), registry, transport
}

var (
	member = presence.CallerIdentity{UserID: "user-1", DisplayName: "Alice", Role: presence.RoleUser}
	admin  = presence.CallerIdentity{UserID: "admin-1", DisplayName: "Root", Role: presence.RoleAdmin}
)

func TestOnConnectRegistersAndJoinsUsersGroup(t *testing.T) {
	hub, registry, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))

	assert.True(t, registry.IsOnline(member.UserID))
	assert.True(t, transport.inGroup("conn-1", presence.GroupUsers))
	assert.False(t, transport.inGroup("conn-1", presence.GroupAdmins))

	connected := transport.broadcastsOfType(presence.EventUserConnected)
	require.Len(t, connected, 1)
	assert.Equal(t, "conn-1", connected[0].except)
}

func TestOnConnectAdminJoinsBothGroups(t *testing.T) {
	hub, _, transport := newTestHub()

	require.NoError(t, hub.OnConnect(admin, "conn-1"))

	assert.True(t, transport.inGroup("conn-1", presence.GroupUsers))
	assert.True(t, transport.inGroup("conn-1", presence.GroupAdmins))
}

func TestOnConnectSecondDeviceStaysQuiet(t *testing.T) {
	hub, _, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))
	require.NoError(t, hub.OnConnect(member, "conn-2"))

	assert.Len(t, transport.broadcastsOfType(presence.EventUserConnected), 1)
	assert.Len(t, transport.broadcastsOfType(presence.EventUserStatusChanged), 1)
	// The second device still joins the Users group.
	assert.True(t, transport.inGroup("conn-2", presence.GroupUsers))
}

func TestOnDisconnectLastConnectionAnnouncesOffline(t *testing.T) {
	hub, registry, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))
	require.NoError(t, hub.OnDisconnect(member, "conn-1", "client closed"))

	assert.False(t, registry.IsOnline(member.UserID))

	disconnected := transport.broadcastsOfType(presence.EventUserDisconnected)
	require.Len(t, disconnected, 1)
	assert.Equal(t, presence.GroupUsers, disconnected[0].group)

	statusChanged := transport.broadcastsOfType(presence.EventUserStatusChanged)
	require.Len(t, statusChanged, 2) // online then offline
	require.NotNil(t, statusChanged[1].event.IsOnline)
	assert.False(t, *statusChanged[1].event.IsOnline)
}

func TestOnDisconnectNonLastConnectionStaysQuiet(t *testing.T) {
	hub, registry, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))
	require.NoError(t, hub.OnConnect(member, "conn-2"))
	require.NoError(t, hub.OnDisconnect(member, "conn-1", "client closed"))

	assert.True(t, registry.IsOnline(member.UserID))
	assert.Empty(t, transport.broadcastsOfType(presence.EventUserDisconnected))
}

// A disconnect for a connection that was never registered must not
// broadcast and must not fail.
func TestOnDisconnectUnknownConnectionIsSilentNoOp(t *testing.T) {
	hub, registry, transport := newTestHub()

	require.NoError(t, hub.OnDisconnect(member, "ghost-conn", "transport retry"))

	assert.Equal(t, 0, registry.OnlineCount())
	assert.Empty(t, transport.broadcasts)
	assert.Empty(t, transport.directs)
}

func TestOnConnectInvalidIdentityRejected(t *testing.T) {
	hub, registry, transport := newTestHub()

	anonymous := presence.CallerIdentity{UserID: "", DisplayName: "Nobody", Role: presence.RoleUser}
	err := hub.OnConnect(anonymous, "conn-1")
	assert.ErrorIs(t, err, presence.ErrInvalidArgument)
	assert.Equal(t, 0, registry.OnlineCount())
	assert.Empty(t, transport.broadcasts)
}

func TestSendMessageReachesWholeUsersGroup(t *testing.T) {
	hub, _, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))
	hub.SendMessage(member, "hello everyone")

	messages := transport.broadcastsOfType(presence.EventReceiveMessage)
	require.Len(t, messages, 1)
	assert.Equal(t, presence.GroupUsers, messages[0].group)
	// The sender is included: no exclusion on message broadcasts.
	assert.Empty(t, messages[0].except)
	assert.Equal(t, "hello everyone", messages[0].event.Message)
	assert.Equal(t, member.UserID, messages[0].event.UserID)
	assert.Equal(t, member.DisplayName, messages[0].event.UserName)
}

func TestJoinAdminGroupAsAdmin(t *testing.T) {
	hub, _, transport := newTestHub()

	require.NoError(t, hub.OnConnect(admin, "conn-1"))
	hub.JoinAdminGroup(admin, "conn-1")

	assert.True(t, transport.inGroup("conn-1", presence.GroupAdmins))
	require.Len(t, transport.directs, 1)
	assert.Equal(t, "conn-1", transport.directs[0].target)
	assert.Equal(t, presence.EventJoinedAdminGroup, transport.directs[0].event.Type)
}

// A non-admin caller gets no group change, no confirmation and no
// error, so role information cannot leak through responses.
func TestJoinAdminGroupAsNonAdminIsSilentlyIgnored(t *testing.T) {
	hub, _, transport := newTestHub()

	require.NoError(t, hub.OnConnect(member, "conn-1"))
	hub.JoinAdminGroup(member, "conn-1")

	assert.False(t, transport.inGroup("conn-1", presence.GroupAdmins))
	assert.Empty(t, transport.directs)
}
