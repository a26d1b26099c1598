package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"main/model"
	"main/repository"
	"main/utils"
)

func (t *SessionTracker) runMonitor(stop <-chan struct{}) {
	ticker := time.NewTicker(t.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.MonitorTick(context.Background())
		case <-stop:
			return
		}
	}
}

// MonitorTick runs one idle check and one security check. The monitor
// goroutine drives it on a fixed interval; tests call it directly.
func (t *SessionTracker) MonitorTick(ctx context.Context) {
	now := t.nowFn()

	t.mu.Lock()
	session := t.session
	if session == nil || t.state == StateEnding || t.state == StateEnded {
		t.mu.Unlock()
		return
	}
	idleFor := now.Sub(session.LastActivityAt)
	age := now.Sub(session.StartedAt)
	userID := session.UserID
	backed := t.state == StateTracking
	t.mu.Unlock()

	if idleFor > t.cfg.IdleTimeout {
		t.LogEvent(ctx, model.EventIdle, "timeout", map[string]interface{}{
			"idle_for": idleFor.Round(time.Second).String(),
		})
		t.EndSession(ctx, "timeout", fmt.Sprintf("idle for %s", idleFor.Round(time.Second)))
		return
	}

	if t.CheckCredential != nil && !t.CheckCredential(ctx, userID) {
		t.flag(ctx, model.AlertInvalidSession, "auth credential no longer valid")
	}

	if backed {
		count, err := t.Store.CountActiveSessions(ctx, userID)
		if err != nil {
			log.Printf("Warning: concurrent session check failed for user %s: %v", userID, err)
		} else if count > t.cfg.MaxConcurrentSessions {
			t.flag(ctx, model.AlertTooManySessions, fmt.Sprintf("%d concurrent sessions active", count))
		}
	}

	if age > t.cfg.MaxSessionDuration {
		t.flag(ctx, model.AlertSessionTooLong, fmt.Sprintf("session open for %s", age.Round(time.Second)))
		t.EndSession(ctx, "forced", "session duration cap exceeded")
	}
}

// flag records a security anomaly. The in-memory flag list always grows;
// the alert row is persisted only when the session is store-backed.
func (t *SessionTracker) flag(ctx context.Context, alertType model.AlertType, description string) {
	now := t.nowFn()

	t.mu.Lock()
	session := t.session
	if session == nil {
		t.mu.Unlock()
		return
	}
	session.SecurityFlags = append(session.SecurityFlags, string(alertType))
	sessionID := session.SessionID
	userID := session.UserID
	backed := session.WriteStatus == model.WriteCompleted && t.state == StateTracking
	t.mu.Unlock()

	severity := model.SeverityFor(alertType)
	utils.TrackSecurityAlert(string(alertType), string(severity))
	log.Printf("Warning: security flag %s (%s) on session %s: %s", alertType, severity, sessionID, description)

	if !backed {
		return
	}

	alert := model.NewSecurityAlert(utils.GenerateEventID(), sessionID, userID, alertType, description, now)
	if err := t.Store.InsertAlert(ctx, alert); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			t.downgrade(sessionID, "alert insert rejected: session row missing")
			return
		}
		log.Printf("Warning: failed to persist %s alert for session %s: %v", alertType, sessionID, err)
	}
}
