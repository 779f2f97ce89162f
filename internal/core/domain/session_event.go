package domain

import "time"

// SessionEventKind names a credential lifecycle transition.
type SessionEventKind string

const (
	EventRegistered SessionEventKind = "registered"
	EventLogin      SessionEventKind = "login"
	EventRefresh    SessionEventKind = "refresh"
	EventLogout     SessionEventKind = "logout"
	EventDeleted    SessionEventKind = "deleted"
)

// SessionEvent is an audit record of a credential lifecycle transition.
type SessionEvent struct {
	UserID string
	Kind   SessionEventKind
	At     time.Time
}
