package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"main/config"
	"main/middleware"
	"main/model"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("GO_ENV", "test")
	utils.InitJWT()
	utils.InitValidator()
	os.Exit(m.Run())
}

func newTestRouter(store repository.SessionStore, tracker *usecase.SessionTracker) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORSMiddleware())

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", func(c *gin.Context) {
		LogoutHandler(c, tracker)
	})

	sessions := protected.Group("/sessions")
	sessions.POST("/start", func(c *gin.Context) {
		StartSessionHandler(c, store, nil)
	})
	sessions.POST("/events", func(c *gin.Context) {
		LogSessionEventHandler(c, store)
	})
	sessions.POST("/end", func(c *gin.Context) {
		EndSessionHandler(c, store)
	})

	return router
}

func authToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := services.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func startSessionFor(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/sessions/start", token, map[string]string{
		"loginMethod": "email",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("start session status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if !resp.Success || resp.SessionID == "" {
		t.Fatalf("start response = %s", w.Body.String())
	}
	return resp.SessionID
}

func TestStartSessionEndpoint(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)
	token := authToken(t, "user1")

	w := doJSON(router, http.MethodPost, "/api/sessions/start", token, map[string]string{
		"loginMethod": "email",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success            bool   `json:"success"`
		SessionID          string `json:"sessionId"`
		ConcurrentSessions int    `json:"concurrentSessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if !regexp.MustCompile(`^session_\d+_[a-zA-Z0-9]+$`).MatchString(resp.SessionID) {
		t.Errorf("sessionId %q has unexpected format", resp.SessionID)
	}
	if resp.ConcurrentSessions != 1 {
		t.Errorf("concurrentSessions = %d, want 1", resp.ConcurrentSessions)
	}

	stored, err := store.GetSession(context.Background(), resp.SessionID)
	if err != nil || stored == nil {
		t.Fatalf("session row not persisted: %v", err)
	}
	if stored.UserID != "user1" || stored.Status != model.StatusActive {
		t.Errorf("stored session = %+v", stored)
	}

	events := store.SessionEvents(resp.SessionID)
	if len(events) != 1 || events[0].Type != model.EventLogin {
		t.Errorf("login event not persisted, events = %v", events)
	}
}

func TestStartSessionRequiresAuth(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)

	w := doJSON(router, http.MethodPost, "/api/sessions/start", "", map[string]string{
		"loginMethod": "email",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestStartSessionRejectsGarbageToken(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)

	w := doJSON(router, http.MethodPost, "/api/sessions/start", "not.a.token", map[string]string{
		"loginMethod": "email",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestStartSessionRequiresLoginMethod(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)
	token := authToken(t, "user1")

	w := doJSON(router, http.MethodPost, "/api/sessions/start", token, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogEventEndpoint(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)
	token := authToken(t, "user1")
	sessionID := startSessionFor(t, router, token)

	w := doJSON(router, http.MethodPost, "/api/sessions/events", token, map[string]interface{}{
		"sessionId": sessionID,
		"eventType": "page_view",
		"data":      map[string]interface{}{"page": "/dashboard"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		EventID string `json:"eventId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.EventID == "" {
		t.Fatalf("event response = %s", w.Body.String())
	}

	// Login event from the start plus the page view
	events := store.SessionEvents(sessionID)
	if len(events) != 2 {
		t.Fatalf("persisted events = %d, want 2", len(events))
	}
	if events[1].Type != model.EventPageView {
		t.Errorf("event type = %q, want page_view", events[1].Type)
	}
}

func TestLogEventRejectsUnknownType(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)
	token := authToken(t, "user1")
	sessionID := startSessionFor(t, router, token)

	w := doJSON(router, http.MethodPost, "/api/sessions/events", token, map[string]string{
		"sessionId": sessionID,
		"eventType": "telepathy",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if got := len(store.SessionEvents(sessionID)); got != 1 {
		t.Errorf("events after rejected write = %d, want 1", got)
	}
}

func TestLogEventRejectsForeignSession(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)

	ownerToken := authToken(t, "user1")
	sessionID := startSessionFor(t, router, ownerToken)

	intruderToken := authToken(t, "user2")
	w := doJSON(router, http.MethodPost, "/api/sessions/events", intruderToken, map[string]string{
		"sessionId": sessionID,
		"eventType": "page_view",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogEventRejectsMissingSession(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)
	token := authToken(t, "user1")

	w := doJSON(router, http.MethodPost, "/api/sessions/events", token, map[string]string{
		"sessionId": "session_0_nosuchrow",
		"eventType": "page_view",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEndSessionEndpoint(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)
	token := authToken(t, "user1")
	sessionID := startSessionFor(t, router, token)

	w := doJSON(router, http.MethodPost, "/api/sessions/end", token, map[string]interface{}{
		"sessionId":    sessionID,
		"logoutMethod": "manual",
		"logoutReason": "closing tab",
		"activityCounts": map[string]int{
			"page_views": 3,
			"api_calls":  5,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success         bool  `json:"success"`
		SessionDuration int64 `json:"sessionDuration"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.SessionDuration < 0 {
		t.Errorf("sessionDuration = %d, want >= 0", resp.SessionDuration)
	}

	stored, _ := store.GetSession(context.Background(), sessionID)
	if stored.Status != model.StatusTerminated {
		t.Errorf("status = %q, want terminated", stored.Status)
	}
	if stored.EndedAt == nil {
		t.Error("ended_at not set")
	}
	if stored.Activity.PageViews != 3 || stored.Activity.APICalls != 5 {
		t.Errorf("activity counts = %+v", stored.Activity)
	}

	events := store.SessionEvents(sessionID)
	last := events[len(events)-1]
	if last.Type != model.EventLogout {
		t.Errorf("last event = %q, want logout", last.Type)
	}

	// A terminated session accepts no further events
	w = doJSON(router, http.MethodPost, "/api/sessions/events", token, map[string]string{
		"sessionId": sessionID,
		"eventType": "page_view",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("event after end: status = %d, want 400", w.Code)
	}
}

func TestEndSessionRejectsForeignSession(t *testing.T) {
	store := repository.NewMemoryStore()
	router := newTestRouter(store, nil)

	ownerToken := authToken(t, "user1")
	sessionID := startSessionFor(t, router, ownerToken)

	w := doJSON(router, http.MethodPost, "/api/sessions/end", authToken(t, "user2"), map[string]string{
		"sessionId": sessionID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	stored, _ := store.GetSession(context.Background(), sessionID)
	if !stored.Open() {
		t.Error("foreign end request terminated the session")
	}
}

func TestLogoutEndpointEndsTrackedSession(t *testing.T) {
	store := repository.NewMemoryStore()
	tracker := usecase.NewSessionTracker(store, config.TrackerConfig{
		MonitorInterval:       time.Minute,
		IdleTimeout:           30 * time.Minute,
		MaxSessionDuration:    24 * time.Hour,
		MaxConcurrentSessions: 3,
		CreateRetries:         1,
		CreateRetryDelay:      time.Millisecond,
		ActivityQueueSize:     8,
	})
	t.Cleanup(tracker.Close)

	sessionID := tracker.StartSession(context.Background(), "user1", "email", usecase.SessionMeta{})
	if !tracker.IsActive() {
		t.Fatal("tracker inactive after StartSession")
	}

	router := newTestRouter(store, tracker)
	w := doJSON(router, http.MethodPost, "/api/auth/logout", authToken(t, "user1"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if tracker.IsActive() {
		t.Error("tracker still active after logout")
	}

	stored, _ := store.GetSession(context.Background(), sessionID)
	if stored == nil {
		t.Fatal("session row missing")
	}
	if stored.Status != model.StatusTerminated {
		t.Errorf("status = %q, want terminated", stored.Status)
	}
	if stored.LogoutMethod != "manual" {
		t.Errorf("logout method = %q, want manual", stored.LogoutMethod)
	}
}

func TestLogoutWithoutActiveSessionStillSucceeds(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/logout", authToken(t, "user1"), nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestPreflightRequestsBypassAuth(t *testing.T) {
	router := newTestRouter(repository.NewMemoryStore(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/start", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
