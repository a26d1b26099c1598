package repository

import (
	"context"
	"errors"
	"time"

	"main/model"
)

// ErrSessionNotFound classifies referential failures: an event or alert
// write that references a session row which does not exist. The tracker
// downgrades to local-only tracking when it sees this.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the persistence boundary of the tracker. All methods
// are safe to call when the backing schema is absent: Available reports
// false and the tracker stays local-only without touching the rest.
type SessionStore interface {
	// Available probes for the session schema. A false result is not an
	// error condition; it permanently downgrades the session to
	// local-only tracking.
	Available(ctx context.Context) bool

	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// FinalizeSession writes the terminal snapshot (end time, duration,
	// counters, flags, status) keyed by exact session id and returns the
	// number of matched rows. Zero matches is reported, not failed.
	FinalizeSession(ctx context.Context, session *model.Session) (int64, error)

	// MarkCleanupFailed records a best-effort cleanup_failed write status
	// when finalization itself failed.
	MarkCleanupFailed(ctx context.Context, sessionID string) error

	// TouchSession refreshes last_activity_at. Fire-and-forget callers
	// tolerate lost updates.
	TouchSession(ctx context.Context, sessionID string, at time.Time) error

	CountActiveSessions(ctx context.Context, userID string) (int, error)

	InsertEvent(ctx context.Context, event *model.SessionEvent) error
	InsertAlert(ctx context.Context, alert *model.SecurityAlert) error
}
