package model

import "time"

// EventType names a presence transition
type EventType string

const (
	EventUserOnline  EventType = "user_online"
	EventUserOffline EventType = "user_offline"
)

// Event is a presence change pushed to lobby viewers
type Event struct {
	Type      EventType
	Timestamp time.Time
	UserID    string
	Username  string
}

// NewPresenceEvent describes user u going online or offline at t
func NewPresenceEvent(online bool, u *User, t time.Time) Event {
	ev := Event{Type: EventUserOffline, Timestamp: t, UserID: u.ID, Username: u.Username}
	if online {
		ev.Type = EventUserOnline
	}
	return ev
}

// Online reports whether the event marks a user coming online
func (e Event) Online() bool {
	return e.Type == EventUserOnline
}
