package model

import "time"

type AlertType string

const (
	AlertTooManySessions    AlertType = "too_many_sessions"
	AlertSessionTooLong     AlertType = "session_too_long"
	AlertInvalidSession     AlertType = "invalid_session"
	AlertSuspiciousActivity AlertType = "suspicious_activity"
	AlertLocationChange     AlertType = "location_change"
	AlertTokenMismatch      AlertType = "token_mismatch"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

var alertSeverities = map[AlertType]AlertSeverity{
	AlertTooManySessions:    SeverityMedium,
	AlertSessionTooLong:     SeverityMedium,
	AlertInvalidSession:     SeverityHigh,
	AlertSuspiciousActivity: SeverityHigh,
	AlertLocationChange:     SeverityMedium,
	AlertTokenMismatch:      SeverityCritical,
}

// SeverityFor maps an alert type to its severity. Unknown types map to low.
func SeverityFor(t AlertType) AlertSeverity {
	if s, ok := alertSeverities[t]; ok {
		return s
	}
	return SeverityLow
}

// SecurityAlert is a flagged anomaly tied to a session. The tracker only
// creates alerts; resolution is an administrative action elsewhere.
type SecurityAlert struct {
	AlertID     string        `bson:"alert_id" json:"alert_id"`
	SessionID   string        `bson:"session_id" json:"session_id"`
	UserID      string        `bson:"user_id" json:"user_id"`
	Type        AlertType     `bson:"alert_type" json:"alert_type"`
	Severity    AlertSeverity `bson:"severity" json:"severity"`
	Description string        `bson:"description" json:"description"`
	Timestamp   time.Time     `bson:"timestamp" json:"timestamp"`
	Resolved    bool          `bson:"resolved" json:"resolved"`
}

// NewSecurityAlert fills in the severity from the fixed type map.
func NewSecurityAlert(alertID, sessionID, userID string, t AlertType, description string, at time.Time) *SecurityAlert {
	return &SecurityAlert{
		AlertID:     alertID,
		SessionID:   sessionID,
		UserID:      userID,
		Type:        t,
		Severity:    SeverityFor(t),
		Description: description,
		Timestamp:   at,
	}
}
