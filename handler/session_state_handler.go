package handler

import (
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// CurrentSessionHandler exposes read-only tracker state to the UI.
func CurrentSessionHandler(c *gin.Context, tracker *usecase.SessionTracker) {
	_, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, gin.H{
		"session": tracker.Stats(),
	})
}
