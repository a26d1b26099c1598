package handler

import (
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// EndSessionHandler finalizes a session row. The logout event is a
// secondary write: its failure is logged but the end still succeeds.
func EndSessionHandler(c *gin.Context, store repository.SessionStore) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req dto.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("session", "invalid_end_request")
		utils.BadRequest(c, "Missing sessionId")
		return
	}

	ctx := c.Request.Context()

	session, err := store.GetSession(ctx, req.SessionID)
	if err != nil {
		utils.TrackError("session", "end_session_lookup_failed")
		utils.InternalError(c, "Failed to verify session")
		return
	}
	if session == nil || session.UserID != userID.(string) {
		utils.BadRequest(c, "Invalid session")
		return
	}

	logoutMethod := req.LogoutMethod
	if logoutMethod == "" {
		logoutMethod = "manual"
	}

	now := time.Now()
	endedAt := now
	duration := now.Sub(session.StartedAt)
	if duration < 0 {
		duration = 0
	}

	session.EndedAt = &endedAt
	session.DurationSeconds = int64(duration.Seconds())
	session.LogoutMethod = logoutMethod
	session.LogoutReason = req.LogoutReason
	session.LastActivityAt = now
	session.Status = model.StatusTerminated
	session.WriteStatus = model.WriteCompleted
	if req.ActivityCounts != nil {
		session.Activity = *req.ActivityCounts
	}

	// The logout event lands while the row is still open
	logoutEvent := &model.SessionEvent{
		EventID:   utils.GenerateEventID(),
		SessionID: session.SessionID,
		UserID:    session.UserID,
		Type:      model.EventLogout,
		Subtype:   logoutMethod,
		Timestamp: now,
	}
	if err := store.InsertEvent(ctx, logoutEvent); err != nil {
		log.Printf("Warning: failed to log logout event for session %s: %v", session.SessionID, err)
	}

	matched, err := store.FinalizeSession(ctx, session)
	if err != nil {
		utils.TrackError("session", "finalize_failed")
		utils.InternalError(c, "Failed to end session")
		return
	}
	if matched == 0 {
		log.Printf("Warning: finalizing session %s matched no rows", session.SessionID)
	}

	utils.TrackSessionEnd(logoutMethod)

	c.JSON(http.StatusOK, dto.EndSessionResponse{
		Success:         true,
		SessionDuration: session.DurationSeconds,
		EndTime:         endedAt,
	})
}
