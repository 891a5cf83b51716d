package presence

// Transition classifies the net presence effect of a single Connect or
// Disconnect call. Presence is a property of the user, not of a
// connection: a second device coming up or a non-last device going away
// does not change presence and must not be announced.
type Transition int

const (
	// TransitionNoOp means the call changed nothing, e.g. a disconnect
	// for a connection that was never registered or already removed.
	TransitionNoOp Transition = iota

	// TransitionBecameOnline is the user's first live connection (0 -> 1).
	TransitionBecameOnline

	// TransitionAlreadyOnline is an additional connection for a user who
	// already had at least one.
	TransitionAlreadyOnline

	// TransitionBecameOffline is the removal of the user's last
	// connection (1 -> 0).
	TransitionBecameOffline

	// TransitionStillOnline is the removal of a non-last connection.
	TransitionStillOnline
)

func (t Transition) String() string {
	switch t {
	case TransitionBecameOnline:
		return "became_online"
	case TransitionAlreadyOnline:
		return "already_online"
	case TransitionBecameOffline:
		return "became_offline"
	case TransitionStillOnline:
		return "still_online"
	default:
		return "noop"
	}
}
