package middleware

import (
	"main/usecase"

	"github.com/gin-gonic/gin"
)

// ActivityMiddleware refreshes the tracker's last-activity timestamp on
// every authenticated request. The persist is fire-and-forget; a lost
// update never affects the request.
func ActivityMiddleware(tracker *usecase.SessionTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, authenticated := c.Get("user_id"); authenticated {
			tracker.Touch()
		}
		c.Next()
	}
}
