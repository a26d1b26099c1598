package usecase

import (
	"context"
	"log"
	"time"

	"main/model"
	"main/utils"
)

type activityTouch struct {
	sessionID string
	at        time.Time
}

// Touch refreshes the local last-activity timestamp and, when the
// session is store-backed, enqueues a fire-and-forget persist. The queue
// drops the newest update under overload; a lost timestamp is
// non-critical.
func (t *SessionTracker) Touch() {
	now := t.nowFn()

	t.mu.Lock()
	session := t.session
	if session == nil {
		t.mu.Unlock()
		return
	}
	session.LastActivityAt = now
	backed := session.WriteStatus == model.WriteCompleted && t.state == StateTracking
	sessionID := session.SessionID
	t.mu.Unlock()

	if !backed {
		return
	}

	select {
	case t.activityCh <- activityTouch{sessionID: sessionID, at: now}:
	default:
		utils.ActivityUpdatesDropped.Inc()
	}
}

// runActivityWriter drains the activity queue for the tracker's
// lifetime. Failed writes are logged and discarded; there is no retry
// and no cancellation of in-flight writes.
func (t *SessionTracker) runActivityWriter() {
	for {
		select {
		case touch := <-t.activityCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := t.Store.TouchSession(ctx, touch.sessionID, touch.at); err != nil {
				log.Printf("Warning: failed to persist activity for session %s: %v", touch.sessionID, err)
			}
			cancel()
		case <-t.activityStop:
			return
		}
	}
}
