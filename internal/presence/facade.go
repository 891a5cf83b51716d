package presence

// QueryFacade exposes read-only presence snapshots to reporting
// consumers. It has no side effects and no caching beyond the
// registry's own state, and is safe to call concurrently with any hub
// activity.
type QueryFacade struct {
	registry *Registry
}

// NewQueryFacade wraps a registry for reporting consumers.
func NewQueryFacade(registry *Registry) *QueryFacade {
	return &QueryFacade{registry: registry}
}

// OnlineUserIDs returns the IDs of all users currently online.
func (f *QueryFacade) OnlineUserIDs() []string {
	return f.registry.OnlineUserIDs()
}

// OnlineCount returns the number of users currently online.
func (f *QueryFacade) OnlineCount() int {
	return f.registry.OnlineCount()
}

// IsOnline reports whether a single user is currently online.
func (f *QueryFacade) IsOnline(userID string) bool {
	return f.registry.IsOnline(userID)
}

// ConnectionsOf returns the user's live connection IDs.
func (f *QueryFacade) ConnectionsOf(userID string) []string {
	return f.registry.ConnectionsOf(userID)
}
