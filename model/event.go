package model

import "time"

type EventType string

const (
	EventLogin         EventType = "login"
	EventLogout        EventType = "logout"
	EventPageView      EventType = "page_view"
	EventAPICall       EventType = "api_call"
	EventUserAction    EventType = "user_action"
	EventSecurityCheck EventType = "security_check"
	EventIdle          EventType = "idle"
	EventError         EventType = "error"
)

var knownEventTypes = map[EventType]bool{
	EventLogin:         true,
	EventLogout:        true,
	EventPageView:      true,
	EventAPICall:       true,
	EventUserAction:    true,
	EventSecurityCheck: true,
	EventIdle:          true,
	EventError:         true,
}

// ValidEventType reports whether a string names a known event type.
func ValidEventType(s string) bool {
	return knownEventTypes[EventType(s)]
}

// SessionEvent is one discrete tracked occurrence within a session.
// Events are write-once: they are never mutated after creation, and an
// event row must never be persisted unless its session row exists.
type SessionEvent struct {
	EventID    string                 `bson:"event_id" json:"event_id"`
	SessionID  string                 `bson:"session_id" json:"session_id"`
	UserID     string                 `bson:"user_id" json:"user_id"`
	Type       EventType              `bson:"event_type" json:"event_type"`
	Subtype    string                 `bson:"event_subtype,omitempty" json:"event_subtype,omitempty"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Data       map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	DeviceInfo string                 `bson:"device_info,omitempty" json:"device_info,omitempty"`
}
