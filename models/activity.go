package models

import "time"

// Activity types handled by the bot.
const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"
	ActivityTypeEndConversation    = "endConversation"
)

// Input hints attached to outgoing messages.
const (
	InputHintAcceptingInput = "acceptingInput"
	InputHintExpectingInput = "expectingInput"
	InputHintIgnoringInput  = "ignoringInput"
)

// DeliveryModeExpectReplies asks the adapter to return replies in the HTTP
// response instead of posting them back to the channel.
const DeliveryModeExpectReplies = "expectReplies"

// ChannelAccount identifies a user or bot on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies a conversation on a channel.
type ConversationAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Activity is the subset of the Bot Framework activity schema the bot uses.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	Timestamp    *time.Time          `json:"timestamp,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	From         ChannelAccount      `json:"from"`
	Conversation ConversationAccount `json:"conversation"`
	Recipient    ChannelAccount      `json:"recipient"`
	Text         string              `json:"text,omitempty"`
	Speak        string              `json:"speak,omitempty"`
	InputHint    string              `json:"inputHint,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	DeliveryMode string              `json:"deliveryMode,omitempty"`
	MembersAdded []ChannelAccount    `json:"membersAdded,omitempty"`
}

// ExpectedReplies is the response body for expectReplies deliveries.
type ExpectedReplies struct {
	Activities []*Activity `json:"activities"`
}

// ResourceResponse is returned by the Bot Connector for a sent activity.
type ResourceResponse struct {
	ID string `json:"id"`
}

// NewReply builds a message addressed back to the sender of a.
func (a *Activity) NewReply(text, inputHint string) *Activity {
	now := time.Now().UTC()
	return &Activity{
		Type:         ActivityTypeMessage,
		Timestamp:    &now,
		ServiceURL:   a.ServiceURL,
		ChannelID:    a.ChannelID,
		From:         a.Recipient,
		Conversation: a.Conversation,
		Recipient:    a.From,
		Text:         text,
		Speak:        text,
		InputHint:    inputHint,
		Locale:       a.Locale,
		ReplyToID:    a.ID,
	}
}
