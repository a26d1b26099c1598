package model

import "time"

type SessionStatus string

const (
	StatusActive     SessionStatus = "active"
	StatusIdle       SessionStatus = "idle"
	StatusTerminated SessionStatus = "terminated"
	StatusExpired    SessionStatus = "expired"
)

// WriteStatus records the outcome of persisting the session row.
type WriteStatus string

const (
	WritePending       WriteStatus = "pending"
	WriteCompleted     WriteStatus = "completed"
	WriteFailed        WriteStatus = "failed"
	WriteCleanupFailed WriteStatus = "cleanup_failed"
)

// ActivityCounts are cumulative per-session counters. They only ever
// increase until the session reaches a terminal state.
type ActivityCounts struct {
	PageViews   int `bson:"page_views" json:"page_views"`
	APICalls    int `bson:"api_calls" json:"api_calls"`
	UserActions int `bson:"user_actions" json:"user_actions"`
	IdleEvents  int `bson:"idle_events" json:"idle_events"`
}

// Session is one authenticated usage span. The end time is set exactly
// once; a terminated session is never resurrected.
type Session struct {
	SessionID          string         `bson:"session_id" json:"session_id"`
	UserID             string         `bson:"user_id" json:"user_id"`
	LoginMethod        string         `bson:"login_method" json:"login_method"`
	StartedAt          time.Time      `bson:"started_at" json:"started_at"`
	EndedAt            *time.Time     `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	DurationSeconds    int64          `bson:"duration_seconds" json:"duration_seconds"`
	LogoutMethod       string         `bson:"logout_method,omitempty" json:"logout_method,omitempty"`
	LogoutReason       string         `bson:"logout_reason,omitempty" json:"logout_reason,omitempty"`
	DeviceInfo         string         `bson:"device_info" json:"device_info"`
	UserAgent          string         `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	IPAddress          string         `bson:"ip_address" json:"ip_address"`
	Location           string         `bson:"location,omitempty" json:"location,omitempty"`
	Activity           ActivityCounts `bson:"activity" json:"activity"`
	SecurityFlags      []string       `bson:"security_flags,omitempty" json:"security_flags,omitempty"`
	ConcurrentSessions int            `bson:"concurrent_sessions" json:"concurrent_sessions"`
	LastActivityAt     time.Time      `bson:"last_activity_at" json:"last_activity_at"`
	Status             SessionStatus  `bson:"status" json:"status"`
	WriteStatus        WriteStatus    `bson:"write_status" json:"write_status"`
}

// Open reports whether the session is still in a non-terminal state.
func (s *Session) Open() bool {
	return s.Status == StatusActive || s.Status == StatusIdle
}
