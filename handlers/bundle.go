package handlers

import (
	"flybot/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers and what the routes need to guard them.
type HandlerBundle struct {
	// Nil when the bot runs without channel authentication.
	BotValidator *utils.ChannelValidator

	PostMessagesHandler gin.HandlerFunc
	HealthHandler       gin.HandlerFunc
}
