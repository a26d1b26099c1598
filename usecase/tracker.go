package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"main/config"
	"main/model"
	"main/repository"
	"main/utils"
)

// TrackerState is the lifecycle of the tracker's current session. All
// transitions happen in single points under the tracker mutex; there are
// no scattered boolean flags.
type TrackerState int

const (
	StateUninitialized TrackerState = iota
	StateStarting
	StateTracking
	StateLocalOnly
	StateEnding
	StateEnded
)

func (s TrackerState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateTracking:
		return "tracking"
	case StateLocalOnly:
		return "local_only"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	default:
		return "uninitialized"
	}
}

// SessionMeta carries best-effort request metadata into StartSession.
// Every field may be empty; the probe fills in what it can.
type SessionMeta struct {
	UserAgent  string
	IPAddress  string
	DeviceInfo string
	Location   string
}

// EnvironmentProbe resolves device and location descriptors. Lookups are
// bounded and never fail: unknown values come back as "Unknown ...".
type EnvironmentProbe interface {
	DeviceInfo(userAgent string) string
	Location(ctx context.Context, ip string) string
}

// SessionTracker owns the current session's in-memory state: lifecycle,
// activity counters, idle detection and security flagging. Store
// failures are absorbed; tracking must never block or fail the primary
// user action.
type SessionTracker struct {
	Store repository.SessionStore
	Probe EnvironmentProbe

	// CheckCredential reports whether the user's auth credential is
	// still live. When nil the check is skipped.
	CheckCredential func(ctx context.Context, userID string) bool

	cfg   config.TrackerConfig
	nowFn func() time.Time

	mu          sync.Mutex
	state       TrackerState
	session     *model.Session
	monitorStop chan struct{}

	activityCh   chan activityTouch
	activityStop chan struct{}
	closeOnce    sync.Once
}

func NewSessionTracker(store repository.SessionStore, cfg config.TrackerConfig) *SessionTracker {
	if cfg.CreateRetries < 1 {
		cfg.CreateRetries = 1
	}
	if cfg.ActivityQueueSize < 1 {
		cfg.ActivityQueueSize = 1
	}

	t := &SessionTracker{
		Store:        store,
		cfg:          cfg,
		nowFn:        time.Now,
		state:        StateUninitialized,
		activityCh:   make(chan activityTouch, cfg.ActivityQueueSize),
		activityStop: make(chan struct{}),
	}
	go t.runActivityWriter()
	return t
}

// StartSession begins tracking a session for a user. It always returns a
// usable session id, even under total store outage: the store probe,
// environment probes and the bounded create-retry loop all degrade to
// local-only tracking instead of failing.
func (t *SessionTracker) StartSession(ctx context.Context, userID, loginMethod string, meta SessionMeta) string {
	now := t.nowFn()
	sessionID := utils.GenerateSessionID(now)

	session := &model.Session{
		SessionID:      sessionID,
		UserID:         userID,
		LoginMethod:    loginMethod,
		StartedAt:      now,
		LastActivityAt: now,
		UserAgent:      meta.UserAgent,
		IPAddress:      meta.IPAddress,
		DeviceInfo:     meta.DeviceInfo,
		Location:       meta.Location,
		Status:         model.StatusActive,
		WriteStatus:    model.WritePending,
	}

	t.mu.Lock()
	if t.session != nil {
		log.Printf("Warning: starting session %s replaces active session %s", sessionID, t.session.SessionID)
		t.stopMonitorLocked()
	}
	t.session = session
	t.state = StateStarting
	t.mu.Unlock()

	if t.Store == nil || !t.Store.Available(ctx) {
		t.mu.Lock()
		if t.session == session {
			session.WriteStatus = model.WriteFailed
			t.state = StateLocalOnly
		}
		t.mu.Unlock()
		log.Printf("Session store unavailable; tracking session %s locally only", sessionID)
		utils.TrackSessionStart("local_only")
		return sessionID
	}

	// Best-effort environment probes; bounded by their own timeouts,
	// never a reason to fail session start.
	deviceInfo := meta.DeviceInfo
	location := meta.Location
	if t.Probe != nil {
		if deviceInfo == "" {
			deviceInfo = t.Probe.DeviceInfo(meta.UserAgent)
		}
		if location == "" {
			location = t.Probe.Location(ctx, meta.IPAddress)
		}
	}

	concurrent, err := t.Store.CountActiveSessions(ctx, userID)
	if err != nil {
		log.Printf("Warning: failed to count active sessions for user %s: %v", userID, err)
		concurrent = 0
	}

	t.mu.Lock()
	if t.session != session {
		// Replaced mid-start; the newer session owns the tracker now.
		t.mu.Unlock()
		return sessionID
	}
	session.DeviceInfo = deviceInfo
	session.Location = location
	session.ConcurrentSessions = concurrent + 1
	row := *session
	t.mu.Unlock()

	var createErr error
	for attempt := 1; attempt <= t.cfg.CreateRetries; attempt++ {
		if createErr = t.Store.CreateSession(ctx, &row); createErr == nil {
			break
		}
		log.Printf("Warning: session create attempt %d/%d failed: %v", attempt, t.cfg.CreateRetries, createErr)
		if attempt == t.cfg.CreateRetries {
			break
		}
		select {
		case <-ctx.Done():
			attempt = t.cfg.CreateRetries
		case <-time.After(t.cfg.CreateRetryDelay):
		}
	}

	if createErr != nil {
		t.mu.Lock()
		if t.session == session {
			session.WriteStatus = model.WriteFailed
			t.state = StateLocalOnly
		}
		t.mu.Unlock()
		utils.StoreDowngradesTotal.Inc()
		log.Printf("Warning: session %s could not be persisted; continuing locally only", sessionID)
		utils.TrackSessionStart("local_only")
		return sessionID
	}

	t.mu.Lock()
	if t.session != session {
		t.mu.Unlock()
		return sessionID
	}
	session.WriteStatus = model.WriteCompleted
	t.state = StateTracking
	stop := make(chan struct{})
	t.monitorStop = stop
	t.mu.Unlock()

	utils.TrackSessionStart("store_backed")
	utils.UpdateActiveSessions(1)
	t.LogEvent(ctx, model.EventLogin, loginMethod, nil)
	go t.runMonitor(stop)

	return sessionID
}

// LogEvent records a tracked occurrence. Local counters and the
// last-activity timestamp are always updated first, so local analytics
// stay accurate when store-backed tracking is off. Errors never reach
// the caller.
func (t *SessionTracker) LogEvent(ctx context.Context, eventType model.EventType, subtype string, data map[string]interface{}) {
	now := t.nowFn()

	t.mu.Lock()
	session := t.session
	if session == nil {
		t.mu.Unlock()
		log.Printf("Warning: logEvent(%s) called with no active session", eventType)
		return
	}

	switch eventType {
	case model.EventPageView:
		session.Activity.PageViews++
	case model.EventAPICall:
		session.Activity.APICalls++
	case model.EventUserAction:
		session.Activity.UserActions++
	case model.EventIdle:
		session.Activity.IdleEvents++
	}
	session.LastActivityAt = now

	backed := session.WriteStatus == model.WriteCompleted &&
		(t.state == StateTracking || t.state == StateEnding)
	sessionID := session.SessionID
	userID := session.UserID
	deviceInfo := session.DeviceInfo
	userAgent := session.UserAgent
	t.mu.Unlock()

	utils.TrackSessionEvent(string(eventType))

	// Local-only tracking is explicitly not an error
	if !backed {
		return
	}

	exists, err := t.Store.SessionExists(ctx, sessionID)
	if err != nil || !exists {
		t.downgrade(sessionID, "session row could not be verified")
		return
	}

	event := &model.SessionEvent{
		EventID:    utils.GenerateEventID(),
		SessionID:  sessionID,
		UserID:     userID,
		Type:       eventType,
		Subtype:    subtype,
		Timestamp:  now,
		Data:       data,
		UserAgent:  userAgent,
		DeviceInfo: deviceInfo,
	}

	if err := t.Store.InsertEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			t.downgrade(sessionID, "event insert rejected: session row missing")
			return
		}
		log.Printf("Warning: failed to persist %s event for session %s: %v", eventType, sessionID, err)
	}
}

func (t *SessionTracker) TrackPageView(ctx context.Context, page string) {
	t.LogEvent(ctx, model.EventPageView, page, nil)
}

func (t *SessionTracker) TrackAPICall(ctx context.Context, endpoint string) {
	t.LogEvent(ctx, model.EventAPICall, endpoint, nil)
}

func (t *SessionTracker) TrackUserAction(ctx context.Context, action string, data map[string]interface{}) {
	t.LogEvent(ctx, model.EventUserAction, action, data)
}

// EndSession finalizes and clears the current session. Calling it with
// no active session is a no-op. Local state is always cleared and the
// monitor always stopped, whatever the store does.
func (t *SessionTracker) EndSession(ctx context.Context, logoutMethod, reason string) {
	now := t.nowFn()

	t.mu.Lock()
	session := t.session
	if session == nil {
		t.mu.Unlock()
		log.Printf("Warning: endSession(%s) called with no active session", logoutMethod)
		return
	}
	if t.state == StateEnding || t.state == StateEnded {
		// A monitor-driven end racing a manual logout must not run the
		// end path twice: the end time is set exactly once.
		t.mu.Unlock()
		log.Printf("Warning: endSession(%s) called while session %s is already ending", logoutMethod, session.SessionID)
		return
	}

	endedAt := now
	session.EndedAt = &endedAt
	duration := now.Sub(session.StartedAt)
	if duration < 0 {
		duration = 0
	}
	session.DurationSeconds = int64(duration.Seconds())
	session.LogoutMethod = logoutMethod
	session.LogoutReason = reason
	session.Status = model.StatusTerminated
	session.LastActivityAt = now
	backed := session.WriteStatus == model.WriteCompleted
	t.state = StateEnding
	t.stopMonitorLocked()
	t.mu.Unlock()

	if backed {
		// The logout event must land while the session row still exists
		// and the credential is still valid.
		t.LogEvent(ctx, model.EventLogout, logoutMethod, map[string]interface{}{"reason": reason})

		t.mu.Lock()
		row := *session
		t.mu.Unlock()

		matched, err := t.Store.FinalizeSession(ctx, &row)
		if err != nil {
			log.Printf("Warning: failed to finalize session %s: %v", session.SessionID, err)
			if markErr := t.Store.MarkCleanupFailed(ctx, session.SessionID); markErr != nil {
				log.Printf("Warning: failed to mark cleanup failure for session %s: %v", session.SessionID, markErr)
			}
		} else if matched == 0 {
			log.Printf("Warning: finalizing session %s matched no rows", session.SessionID)
		}
	}

	t.mu.Lock()
	if t.session == session {
		t.session = nil
		t.state = StateEnded
	}
	t.mu.Unlock()

	utils.TrackSessionEnd(logoutMethod)
	utils.UpdateActiveSessions(0)
}

// downgrade moves a live session to local-only tracking. The downgrade
// is permanent for the session's remaining lifetime.
func (t *SessionTracker) downgrade(sessionID, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || t.session.SessionID != sessionID {
		return
	}
	if t.state != StateTracking && t.state != StateStarting {
		return
	}

	t.state = StateLocalOnly
	t.session.WriteStatus = model.WriteFailed
	utils.StoreDowngradesTotal.Inc()
	log.Printf("Warning: session %s downgraded to local-only tracking: %s", sessionID, reason)
}

func (t *SessionTracker) stopMonitorLocked() {
	if t.monitorStop != nil {
		close(t.monitorStop)
		t.monitorStop = nil
	}
}

// Snapshot is a read-only view of tracker state for handlers and tests.
type Snapshot struct {
	Active         bool                 `json:"active"`
	State          string               `json:"state"`
	StoreBacked    bool                 `json:"store_backed"`
	SessionID      string               `json:"session_id,omitempty"`
	UserID         string               `json:"user_id,omitempty"`
	StartedAt      time.Time            `json:"started_at,omitempty"`
	LastActivityAt time.Time            `json:"last_activity_at,omitempty"`
	Activity       model.ActivityCounts `json:"activity"`
	SecurityFlags  []string             `json:"security_flags,omitempty"`
}

func (t *SessionTracker) Stats() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := Snapshot{State: t.state.String()}
	if t.session == nil {
		return snapshot
	}

	snapshot.Active = true
	snapshot.StoreBacked = t.state == StateTracking
	snapshot.SessionID = t.session.SessionID
	snapshot.UserID = t.session.UserID
	snapshot.StartedAt = t.session.StartedAt
	snapshot.LastActivityAt = t.session.LastActivityAt
	snapshot.Activity = t.session.Activity
	snapshot.SecurityFlags = append([]string(nil), t.session.SecurityFlags...)
	return snapshot
}

func (t *SessionTracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session != nil
}

func (t *SessionTracker) CurrentSessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ""
	}
	return t.session.SessionID
}

// Close stops the monitor and the activity writer. The tracker must not
// be used afterwards.
func (t *SessionTracker) Close() {
	t.mu.Lock()
	t.stopMonitorLocked()
	t.mu.Unlock()
	t.closeOnce.Do(func() { close(t.activityStop) })
}
