package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/database"
)

// Health reports whether the service and its database are reachable.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := database.Healthy(db); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unreachable"
		}

		c.JSON(status, gin.H{
			"success":    status == http.StatusOK,
			"database":   dbStatus,
			"checked_at": time.Now().UTC(),
		})
	}
}
