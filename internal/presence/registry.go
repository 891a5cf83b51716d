package presence

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidArgument is returned when a caller passes a malformed user
// or connection identifier. No state is mutated in that case.
var ErrInvalidArgument = errors.New("invalid argument")

// Registry owns the mapping from logical user to the set of live
// transport connections, and the derived online-user set. It is the
// only mutable shared state in the realtime core.
//
// A user appears in the online set exactly while their connection set
// is non-empty; empty-set entries never persist. The record is created
// implicitly on the first Connect and destroyed implicitly when the
// last connection is removed.
type Registry struct {
	mu sync.RWMutex

	// connections maps user ID to the set of live connection IDs.
	connections map[string]map[string]bool
}

// NewRegistry creates an empty connection registry. One registry is
// constructed per process and injected into the hub and the query
// facade.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]bool),
	}
}

func validateIDs(userID, connectionID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if connectionID == "" {
		return fmt.Errorf("%w: empty connection id", ErrInvalidArgument)
	}
	return nil
}

// Connect adds connectionID to userID's connection set and reports the
// resulting transition. Adding an already-present connection is an
// idempotent no-op on the set, reported as TransitionAlreadyOnline.
// Transition detection is atomic: of two concurrent first connects for
// the same user, exactly one observes TransitionBecameOnline.
func (r *Registry) Connect(userID, connectionID string) (Transition, error) {
	if err := validateIDs(userID, connectionID); err != nil {
		return TransitionNoOp, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		r.connections[userID] = map[string]bool{connectionID: true}
		return TransitionBecameOnline, nil
	}

	set[connectionID] = true
	return TransitionAlreadyOnline, nil
}

// Disconnect removes connectionID from userID's connection set if
// present. Removing an unknown connection is not an error: duplicate
// and out-of-order disconnect notifications are a normal transport
// occurrence and report TransitionNoOp.
func (r *Registry) Disconnect(userID, connectionID string) (Transition, error) {
	if err := validateIDs(userID, connectionID); err != nil {
		return TransitionNoOp, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok || !set[connectionID] {
		return TransitionNoOp, nil
	}

	delete(set, connectionID)
	if len(set) == 0 {
		delete(r.connections, userID)
		return TransitionBecameOffline, nil
	}
	return TransitionStillOnline, nil
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userID]) > 0
}

// ConnectionsOf returns the user's live connection IDs. The result is
// empty when the user never connected or is currently offline.
func (r *Registry) ConnectionsOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.connections[userID]
	result := make([]string, 0, len(set))
	for connectionID := range set {
		result = append(result, connectionID)
	}
	return result
}

// OnlineUserIDs returns a snapshot of all users with at least one live
// connection. The snapshot may be momentarily stale with respect to
// concurrent connects and disconnects.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.connections))
	for userID := range r.connections {
		result = append(result, userID)
	}
	return result
}

// OnlineCount returns the number of users currently online.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
