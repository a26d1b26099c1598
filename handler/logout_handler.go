package handler

import (
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// LogoutHandler ends the tracked session and invalidates the caller's
// tokens. Session teardown runs first, while the access credential is
// still valid: event logging and store writes require it. Tracking
// failures never fail the logout.
func LogoutHandler(c *gin.Context, tracker *usecase.SessionTracker) {
	_, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if clientSessionID := c.GetHeader("X-Session-ID"); clientSessionID != "" {
		log.Printf("Logout requested for client session %s", clientSessionID)
	}

	if tracker != nil && tracker.IsActive() {
		tracker.EndSession(c.Request.Context(), "manual", "user logout")
	}

	accessToken := c.GetString("access_token")
	refreshToken := c.GetHeader("Refresh-Token")

	if services.TokenBlacklist != nil {
		if err := services.BlacklistTokens(accessToken, refreshToken); err != nil {
			utils.TrackError("auth", "token_blacklist_failed")
			utils.InternalError(c, "Failed to logout")
			return
		}
	} else {
		log.Printf("Warning: token blacklist unavailable; tokens for this logout stay valid until expiry")
	}

	utils.TrackAuthAttempt("success", "logout")

	c.JSON(http.StatusOK, dto.LogoutResponse{
		Success:   true,
		Message:   "Successfully logged out",
		Timestamp: time.Now(),
	})
}
