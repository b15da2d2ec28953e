package middleware

import (
	"net/http"

	"flybot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelClaimsKey is the gin context key holding the caller's *utils.ChannelClaims.
const ChannelClaimsKey = "channelClaims"

// BotAuthMiddleware rejects requests without a valid Bot Connector token.
// A nil validator disables authentication.
func BotAuthMiddleware(validator *utils.ChannelValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.Next()
			return
		}
		claims, err := validator.Validate(c.GetHeader("Authorization"), "")
		if err != nil {
			zap.L().Warn("Rejected bot request", zap.String("ip", getClientIP(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Unauthorized"})
			return
		}
		c.Set(ChannelClaimsKey, claims)
		c.Next()
	}
}
