package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// LogSessionEventHandler persists one event row. The session id in the
// payload must reference an open session owned by the authenticated
// user; nothing is written otherwise.
func LogSessionEventHandler(c *gin.Context, store repository.SessionStore) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req dto.LogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("session", "invalid_event_request")
		utils.BadRequest(c, "Missing sessionId or eventType")
		return
	}

	if !model.ValidEventType(req.EventType) {
		utils.BadRequest(c, "Unknown eventType")
		return
	}

	ctx := c.Request.Context()

	session, err := store.GetSession(ctx, req.SessionID)
	if err != nil {
		utils.TrackError("session", "event_session_lookup_failed")
		utils.InternalError(c, "Failed to verify session")
		return
	}
	if session == nil || !session.Open() || session.UserID != userID.(string) {
		utils.BadRequest(c, "Invalid session")
		return
	}

	now := time.Now()
	event := &model.SessionEvent{
		EventID:    utils.GenerateEventID(),
		SessionID:  req.SessionID,
		UserID:     userID.(string),
		Type:       model.EventType(req.EventType),
		Subtype:    req.EventSubtype,
		Timestamp:  now,
		Data:       req.Data,
		UserAgent:  req.UserAgent,
		DeviceInfo: req.DeviceInfo,
	}

	if err := store.InsertEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			utils.BadRequest(c, "Invalid session")
			return
		}
		utils.TrackError("session", "event_insert_failed")
		utils.InternalError(c, "Failed to log event")
		return
	}

	// Secondary write; a lost activity timestamp is non-critical
	if err := store.TouchSession(ctx, req.SessionID, now); err != nil {
		log.Printf("Warning: failed to touch session %s: %v", req.SessionID, err)
	}

	utils.TrackSessionEvent(req.EventType)

	c.JSON(http.StatusOK, dto.LogEventResponse{
		Success: true,
		EventID: event.EventID,
	})
}
