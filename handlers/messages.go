package handlers

import (
	"context"
	"net/http"
	"strings"

	"flybot/middleware"
	"flybot/models"
	"flybot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MsgTurnError is sent to the user when a turn fails.
const MsgTurnError = "The bot encountered an error or bug."

// TurnHandler runs the bot for one incoming activity.
type TurnHandler interface {
	OnTurn(ctx context.Context, activity *models.Activity) ([]*models.Activity, error)
}

// ReplySender delivers replies through the channel's connector.
type ReplySender interface {
	SendToConversation(ctx context.Context, a *models.Activity) (*models.ResourceResponse, error)
}

type MessagesHandler struct {
	Bot    TurnHandler
	Sender ReplySender
}

func NewMessagesHandler(bot TurnHandler, sender ReplySender) *MessagesHandler {
	return &MessagesHandler{Bot: bot, Sender: sender}
}

// PostActivity handles POST /api/messages.
func (h *MessagesHandler) PostActivity(c *gin.Context) {
	logger := getLogger(c)

	if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		utils.JSONError(c, http.StatusUnsupportedMediaType, "Unsupported media type", "expected application/json")
		return
	}

	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid activity", err.Error())
		return
	}
	if activity.Type == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid activity", "missing activity type")
		return
	}

	if v, ok := c.Get(middleware.ChannelClaimsKey); ok {
		if claims, ok := v.(*utils.ChannelClaims); ok && !claims.AllowsServiceURL(activity.ServiceURL) {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "service url does not match token")
			return
		}
	}

	logger = logger.With(
		zap.String("activityType", activity.Type),
		zap.String("conversationId", activity.Conversation.ID),
		zap.String("channelId", activity.ChannelID),
	)
	ctx := c.Request.Context()

	replies, err := h.Bot.OnTurn(ctx, &activity)
	if err != nil {
		logger.Error("Turn failed", zap.Error(err))
		replies = []*models.Activity{activity.NewReply(MsgTurnError, models.InputHintAcceptingInput)}
	}

	if activity.DeliveryMode == models.DeliveryModeExpectReplies {
		if replies == nil {
			replies = []*models.Activity{}
		}
		c.JSON(http.StatusOK, models.ExpectedReplies{Activities: replies})
		return
	}

	for _, reply := range replies {
		if _, err := h.Sender.SendToConversation(ctx, reply); err != nil {
			logger.Error("Failed to deliver reply", zap.Error(err))
			utils.JSONError(c, http.StatusBadGateway, "Failed to deliver reply", err.Error())
			return
		}
	}
	c.Status(http.StatusCreated)
}
