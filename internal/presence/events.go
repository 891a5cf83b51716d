package presence

import "time"

// Group names used with the transport's group-broadcast facility.
// Every connection joins GroupUsers at connect time; GroupAdmins holds
// the connections whose caller carries the administrator role.
const (
	GroupUsers  = "Users"
	GroupAdmins = "Admins"
)

// Event types delivered to connected clients.
const (
	EventReceiveMessage    = "ReceiveMessage"
	EventUserConnected     = "UserConnected"
	EventUserDisconnected  = "UserDisconnected"
	EventUserStatusChanged = "UserStatusChanged"
	EventJoinedAdminGroup  = "JoinedAdminGroup"
)

// Event is a single outbound server-to-client notification. Unused
// payload fields are omitted from the wire representation.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Message   string    `json:"message,omitempty"`
	IsOnline  *bool     `json:"isOnline,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReceiveMessageEvent creates a chat message event for the Users group.
func NewReceiveMessageEvent(userID, userName, message string) *Event {
	return &Event{
		Type:      EventReceiveMessage,
		UserID:    userID,
		UserName:  userName,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserConnectedEvent announces a user coming online to other users.
func NewUserConnectedEvent(userID, userName string) *Event {
	return &Event{
		Type:      EventUserConnected,
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserDisconnectedEvent announces a user going offline to other users.
func NewUserDisconnectedEvent(userID, userName string) *Event {
	return &Event{
		Type:      EventUserDisconnected,
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserStatusChangedEvent is the admin-only presence change notification.
func NewUserStatusChangedEvent(userID, userName string, isOnline bool) *Event {
	return &Event{
		Type:      EventUserStatusChanged,
		UserID:    userID,
		UserName:  userName,
		IsOnline:  &isOnline,
		Timestamp: time.Now().UTC(),
	}
}

// NewJoinedAdminGroupEvent confirms admin group membership to the caller.
func NewJoinedAdminGroupEvent() *Event {
	return &Event{
		Type:      EventJoinedAdminGroup,
		Timestamp: time.Now().UTC(),
	}
}
