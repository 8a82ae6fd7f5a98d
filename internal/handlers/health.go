package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/database"
)

const healthPingTimeout = 2 * time.Second

// Health reports readiness based on a database ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Ping(requestContext(c), db, healthPingTimeout); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "unavailable",
				"checked_at": time.Now().UTC(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"checked_at": time.Now().UTC(),
		})
	}
}
