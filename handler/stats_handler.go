package handler

import (
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// StatsHandler reports tracker state alongside host-level usage.
func StatsHandler(c *gin.Context, tracker *usecase.SessionTracker) {
	_, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, gin.H{
		"tracker": tracker.Stats(),
		"system": gin.H{
			"cpu_percent":    utils.GetCPUUsage(),
			"memory_percent": utils.GetMemoryUsage(),
		},
	})
}
