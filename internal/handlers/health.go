package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "timetrack is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Ready reports whether the database and the token revocation store answer.
func Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "revocation": "ok"}
	status := http.StatusOK

	if err := db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := auth.Ping(ctx); err != nil {
		checks["revocation"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
