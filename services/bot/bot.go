// Package bot turns incoming channel activities into dialog turns.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flybot/models"
	"flybot/services/dialog"
	"flybot/services/state"
	"flybot/services/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const WelcomeMessage = "Hi there! I'm a friendly bot and I will try to help you."

var ErrNilActivity = errors.New("bot: nil activity")

// Telemetry event names.
const (
	EventMessageReceived = "BotMessageReceived"
	EventMessageSend     = "BotMessageSend"
)

// Runner runs one dialog turn.
type Runner interface {
	Run(ctx context.Context, st *models.ConversationState, text string) []dialog.Reply
}

// Bot greets new members and runs the booking dialog for messages.
type Bot struct {
	runner    Runner
	store     state.Store
	telemetry telemetry.Client
	logger    *zap.Logger
	now       func() time.Time
}

func New(runner Runner, store state.Store, tel telemetry.Client, logger *zap.Logger) *Bot {
	if tel == nil {
		tel = telemetry.NullClient{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{runner: runner, store: store, telemetry: tel, logger: logger, now: time.Now}
}

// OnTurn handles one activity and returns the replies to send back. State is
// saved before returning, even when no reply is produced; an endConversation
// activity drops it instead.
func (b *Bot) OnTurn(ctx context.Context, activity *models.Activity) ([]*models.Activity, error) {
	if activity == nil {
		return nil, ErrNilActivity
	}

	key := state.ConversationKey(activity.ChannelID, activity.Conversation.ID)
	if activity.Type == models.ActivityTypeEndConversation {
		if err := b.store.Clear(ctx, key); err != nil {
			return nil, fmt.Errorf("clear conversation state: %w", err)
		}
		b.logger.Debug("conversation ended", zap.String("conversationId", activity.Conversation.ID))
		return nil, nil
	}

	st, err := b.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	if st.UserID == "" {
		st.UserID = activity.From.ID
	}
	ctx = dialog.WithConversationID(ctx, activity.Conversation.ID)

	var replies []*models.Activity
	switch activity.Type {
	case models.ActivityTypeMessage:
		b.trackActivity(EventMessageReceived, activity, st)
		replies = b.reply(activity, b.runner.Run(ctx, st, activity.Text))

	case models.ActivityTypeConversationUpdate:
		replies = b.onMembersAdded(activity)

	default:
		b.logger.Debug("ignoring activity", zap.String("type", activity.Type), zap.String("conversationId", activity.Conversation.ID))
	}

	for _, r := range replies {
		b.trackActivity(EventMessageSend, r, st)
	}

	if err := b.store.Set(ctx, key, st); err != nil {
		return nil, fmt.Errorf("save conversation state: %w", err)
	}
	return replies, nil
}

// onMembersAdded welcomes every new member except the bot itself. The main
// dialog starts with the member's first message.
func (b *Bot) onMembersAdded(activity *models.Activity) []*models.Activity {
	var replies []*models.Activity
	for _, member := range activity.MembersAdded {
		if member.ID == activity.Recipient.ID {
			continue
		}
		replies = append(replies, b.stamp(activity.NewReply(WelcomeMessage, models.InputHintIgnoringInput)))
	}
	return replies
}

func (b *Bot) reply(activity *models.Activity, out []dialog.Reply) []*models.Activity {
	replies := make([]*models.Activity, 0, len(out))
	for _, r := range out {
		replies = append(replies, b.stamp(activity.NewReply(r.Text, r.InputHint)))
	}
	return replies
}

func (b *Bot) stamp(a *models.Activity) *models.Activity {
	ts := b.now().UTC()
	a.ID = uuid.New().String()
	a.Timestamp = &ts
	return a
}

func (b *Bot) trackActivity(event string, a *models.Activity, st *models.ConversationState) {
	b.telemetry.TrackEvent(event, map[string]string{
		"text":             a.Text,
		"fromId":           a.From.ID,
		"fromName":         a.From.Name,
		"recipientId":      a.Recipient.ID,
		"recipientName":    a.Recipient.Name,
		"conversationId":   a.Conversation.ID,
		"conversationName": a.Conversation.Name,
		"channelId":        a.ChannelID,
		"locale":           a.Locale,
		"mainDialogUuid":   st.MainDialogUUID,
	}, nil)
}
