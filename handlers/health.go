package handlers

import (
	"net/http"

	"flybot/utils"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and the last dependency health snapshot.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Hi, I'm flybot",
		"health":  utils.GetHealthStatus(),
	})
}
