package handler

import (
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// StartSessionHandler persists a new session row for the authenticated
// user. The login event is a secondary write: its failure is logged but
// never fails the session start.
func StartSessionHandler(c *gin.Context, store repository.SessionStore, probe usecase.EnvironmentProbe) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("session", "invalid_start_request")
		utils.BadRequest(c, "Missing loginMethod")
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	sessionID := utils.GenerateSessionID(now)

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}
	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress = c.ClientIP()
	}

	deviceInfo := req.DeviceInfo
	location := req.Location
	if probe != nil {
		if deviceInfo == "" {
			deviceInfo = probe.DeviceInfo(userAgent)
		}
		if location == "" {
			location = probe.Location(ctx, ipAddress)
		}
	}

	concurrent, err := store.CountActiveSessions(ctx, userID.(string))
	if err != nil {
		log.Printf("Warning: failed to count active sessions for user %s: %v", userID, err)
		concurrent = 0
	}

	session := &model.Session{
		SessionID:          sessionID,
		UserID:             userID.(string),
		LoginMethod:        req.LoginMethod,
		StartedAt:          now,
		LastActivityAt:     now,
		UserAgent:          userAgent,
		IPAddress:          ipAddress,
		DeviceInfo:         deviceInfo,
		Location:           location,
		ConcurrentSessions: concurrent + 1,
		Status:             model.StatusActive,
		WriteStatus:        model.WriteCompleted,
	}

	if err := store.CreateSession(ctx, session); err != nil {
		utils.TrackError("session", "creation_failed")
		utils.InternalError(c, "Failed to create session")
		return
	}

	loginEvent := &model.SessionEvent{
		EventID:    utils.GenerateEventID(),
		SessionID:  sessionID,
		UserID:     userID.(string),
		Type:       model.EventLogin,
		Subtype:    req.LoginMethod,
		Timestamp:  now,
		UserAgent:  userAgent,
		DeviceInfo: deviceInfo,
	}
	if err := store.InsertEvent(ctx, loginEvent); err != nil {
		log.Printf("Warning: failed to log login event for session %s: %v", sessionID, err)
	}

	utils.TrackSessionStart("store_backed")

	c.JSON(http.StatusOK, dto.StartSessionResponse{
		Success:            true,
		SessionID:          sessionID,
		ConcurrentSessions: concurrent + 1,
	})
}
