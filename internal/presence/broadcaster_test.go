package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedCall captures a single transport invocation.
type recordedCall struct {
	method string
	group  string
	except string
	target string
	event  *Event
}

// recordingTransport implements Transport and records every call.
type recordingTransport struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (rt *recordingTransport) AddToGroup(connectionID, group string) {
	rt.record(recordedCall{method: "AddToGroup", target: connectionID, group: group})
}

func (rt *recordingTransport) BroadcastTo(group string, event *Event) {
	rt.record(recordedCall{method: "BroadcastTo", group: group, event: event})
}

func (rt *recordingTransport) BroadcastToExcept(group, exceptConnectionID string, event *Event) {
	rt.record(recordedCall{method: "BroadcastToExcept", group: group, except: exceptConnectionID, event: event})
}

func (rt *recordingTransport) SendTo(connectionID string, event *Event) {
	rt.record(recordedCall{method: "SendTo", target: connectionID, event: event})
}

func (rt *recordingTransport) record(call recordedCall) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.calls = append(rt.calls, call)
}

func (rt *recordingTransport) recorded() []recordedCall {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	result := make([]recordedCall, len(rt.calls))
	copy(result, rt.calls)
	return result
}

func (rt *recordingTransport) eventsOfType(eventType string) []recordedCall {
	var result []recordedCall
	for _, call := range rt.recorded() {
		if call.event != nil && call.event.Type == eventType {
			result = append(result, call)
		}
	}
	return result
}

// capturingPublisher implements StatusPublisher and delivers captured
// updates on a channel so tests can wait for the async publish.
type capturingPublisher struct {
	updates chan StatusUpdate
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{updates: make(chan StatusUpdate, 8)}
}

func (p *capturingPublisher) PublishStatusUpdate(_ context.Context, update StatusUpdate) error {
	p.updates <- update
	return nil
}

var alice = CallerIdentity{UserID: "user-1", DisplayName: "Alice", Role: RoleUser}

func TestAnnounceBecameOnline(t *testing.T) {
	transport := &recordingTransport{}
	b := NewBroadcaster(transport, nil, nil)

	b.Announce(TransitionBecameOnline, alice, "conn-1")

	connected := transport.eventsOfType(EventUserConnected)
	require.Len(t, connected, 1)
	assert.Equal(t, "BroadcastToExcept", connected[0].method)
	assert.Equal(t, GroupUsers, connected[0].group)
	assert.Equal(t, "conn-1", connected[0].except)
	assert.Equal(t, "user-1", connected[0].event.UserID)
	assert.Equal(t, "Alice", connected[0].event.UserName)

	statusChanged := transport.eventsOfType(EventUserStatusChanged)
	require.Len(t, statusChanged, 1)
	assert.Equal(t, "BroadcastTo", statusChanged[0].method)
	assert.Equal(t, GroupAdmins, statusChanged[0].group)
	require.NotNil(t, statusChanged[0].event.IsOnline)
	assert.True(t, *statusChanged[0].event.IsOnline)
}

func TestAnnounceBecameOffline(t *testing.T) {
	transport := &recordingTransport{}
	b := NewBroadcaster(transport, nil, nil)

	b.Announce(TransitionBecameOffline, alice, "conn-1")

	disconnected := transport.eventsOfType(EventUserDisconnected)
	require.Len(t, disconnected, 1)
	assert.Equal(t, GroupUsers, disconnected[0].group)
	assert.Equal(t, "conn-1", disconnected[0].except)

	statusChanged := transport.eventsOfType(EventUserStatusChanged)
	require.Len(t, statusChanged, 1)
	assert.Equal(t, GroupAdmins, statusChanged[0].group)
	require.NotNil(t, statusChanged[0].event.IsOnline)
	assert.False(t, *statusChanged[0].event.IsOnline)
}

func TestAnnounceSilentTransitions(t *testing.T) {
	for _, transition := range []Transition{TransitionAlreadyOnline, TransitionStillOnline, TransitionNoOp} {
		t.Run(transition.String(), func(t *testing.T) {
			transport := &recordingTransport{}
			b := NewBroadcaster(transport, nil, nil)

			b.Announce(transition, alice, "conn-1")

			assert.Empty(t, transport.recorded())
		})
	}
}

// N connect calls for the same user with no intervening disconnects
// must produce exactly one online announcement.
func TestNoDuplicateOnlineBroadcast(t *testing.T) {
	registry := NewRegistry()
	transport := &recordingTransport{}
	b := NewBroadcaster(transport, nil, nil)

	for i, connectionID := range []string{"c1", "c2", "c3", "c4", "c5"} {
		transition, err := registry.Connect(alice.UserID, connectionID)
		require.NoError(t, err, "connect %d", i)
		b.Announce(transition, alice, connectionID)
	}

	assert.Len(t, transport.eventsOfType(EventUserConnected), 1)
	assert.Len(t, transport.eventsOfType(EventUserStatusChanged), 1)
}

func TestAnnouncePublishesStatusUpdate(t *testing.T) {
	transport := &recordingTransport{}
	publisher := newCapturingPublisher()
	b := NewBroadcaster(transport, publisher, nil)

	b.Announce(TransitionBecameOnline, alice, "conn-1")

	select {
	case update := <-publisher.updates:
		assert.Equal(t, "user-1", update.UserID)
		assert.Equal(t, "Alice", update.UserName)
		assert.True(t, update.IsOnline)
	case <-time.After(time.Second):
		t.Fatal("expected a status update to be published")
	}
}

func TestAnnounceSilentTransitionsDoNotPublish(t *testing.T) {
	transport := &recordingTransport{}
	publisher := newCapturingPublisher()
	b := NewBroadcaster(transport, publisher, nil)

	b.Announce(TransitionAlreadyOnline, alice, "conn-1")
	b.Announce(TransitionStillOnline, alice, "conn-1")
	b.Announce(TransitionNoOp, alice, "conn-1")

	select {
	case update := <-publisher.updates:
		t.Fatalf("unexpected status update published: %+v", update)
	case <-time.After(100 * time.Millisecond):
	}
}
