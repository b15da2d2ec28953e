package bot

import (
	"context"
	"errors"
	"testing"

	"flybot/models"
	"flybot/services/dialog"
	"flybot/services/state"
	"flybot/services/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRunner struct {
	texts []string
}

func (r *echoRunner) Run(ctx context.Context, st *models.ConversationState, text string) []dialog.Reply {
	r.texts = append(r.texts, text)
	st.Step++
	st.MainDialogUUID = "main-1"
	return []dialog.Reply{{Text: "echo: " + text, InputHint: models.InputHintExpectingInput}}
}

type event struct {
	name       string
	properties map[string]string
}

type recordingTelemetry struct {
	telemetry.NullClient
	events []event
}

func (r *recordingTelemetry) TrackEvent(name string, properties map[string]string, _ map[string]float64) {
	r.events = append(r.events, event{name, properties})
}

type failingStore struct {
	state.Store
}

func (failingStore) Get(ctx context.Context, key string) (*models.ConversationState, error) {
	return nil, errors.New("redis down")
}

func message(text string) *models.Activity {
	return &models.Activity{
		Type:         models.ActivityTypeMessage,
		ID:           "in-1",
		ChannelID:    "emulator",
		ServiceURL:   "http://localhost:9000",
		From:         models.ChannelAccount{ID: "user-1", Name: "User"},
		Recipient:    models.ChannelAccount{ID: "bot-1", Name: "Bot"},
		Conversation: models.ConversationAccount{ID: "conv-1"},
		Text:         text,
	}
}

func TestOnTurn_Message(t *testing.T) {
	runner := &echoRunner{}
	store := state.NewMemoryStore()
	tel := &recordingTelemetry{}
	b := New(runner, store, tel, nil)

	replies, err := b.OnTurn(context.Background(), message("hello"))
	require.NoError(t, err)
	require.Len(t, replies, 1)

	r := replies[0]
	assert.Equal(t, "echo: hello", r.Text)
	assert.Equal(t, "in-1", r.ReplyToID)
	assert.Equal(t, "bot-1", r.From.ID)
	assert.Equal(t, "user-1", r.Recipient.ID)
	assert.NotEmpty(t, r.ID)
	assert.NotNil(t, r.Timestamp)

	st, err := store.Get(context.Background(), state.ConversationKey("emulator", "conv-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, "user-1", st.UserID)

	require.Len(t, tel.events, 2)
	assert.Equal(t, EventMessageReceived, tel.events[0].name)
	assert.Equal(t, "hello", tel.events[0].properties["text"])
	assert.Equal(t, EventMessageSend, tel.events[1].name)
	assert.Equal(t, "main-1", tel.events[1].properties["mainDialogUuid"])
}

func TestOnTurn_StatePersistsAcrossTurns(t *testing.T) {
	store := state.NewMemoryStore()
	b := New(&echoRunner{}, store, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := b.OnTurn(context.Background(), message("x"))
		require.NoError(t, err)
	}
	st, err := store.Get(context.Background(), state.ConversationKey("emulator", "conv-1"))
	require.NoError(t, err)
	assert.Equal(t, 3, st.Step)
}

func TestOnTurn_WelcomesNewMembers(t *testing.T) {
	runner := &echoRunner{}
	b := New(runner, state.NewMemoryStore(), nil, nil)

	update := message("")
	update.Type = models.ActivityTypeConversationUpdate
	update.MembersAdded = []models.ChannelAccount{{ID: "bot-1"}, {ID: "user-1"}}

	replies, err := b.OnTurn(context.Background(), update)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, WelcomeMessage, replies[0].Text)
	assert.Equal(t, models.InputHintIgnoringInput, replies[0].InputHint)
	assert.Empty(t, runner.texts)

	replies, err = b.OnTurn(context.Background(), message("hi"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, []string{"hi"}, runner.texts)
}

func TestOnTurn_EndConversationClearsState(t *testing.T) {
	store := state.NewMemoryStore()
	b := New(&echoRunner{}, store, nil, nil)
	key := state.ConversationKey("emulator", "conv-1")

	_, err := b.OnTurn(context.Background(), message("x"))
	require.NoError(t, err)
	st, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, 1, st.Step)

	end := message("")
	end.Type = models.ActivityTypeEndConversation
	replies, err := b.OnTurn(context.Background(), end)
	require.NoError(t, err)
	assert.Empty(t, replies)

	st, err = store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, &models.ConversationState{}, st)
}

func TestOnTurn_BotJoiningAloneIsSilent(t *testing.T) {
	runner := &echoRunner{}
	b := New(runner, state.NewMemoryStore(), nil, nil)

	update := message("")
	update.Type = models.ActivityTypeConversationUpdate
	update.MembersAdded = []models.ChannelAccount{{ID: "bot-1"}}

	replies, err := b.OnTurn(context.Background(), update)
	require.NoError(t, err)
	assert.Empty(t, replies)
	assert.Empty(t, runner.texts)
}

func TestOnTurn_IgnoresOtherActivities(t *testing.T) {
	b := New(&echoRunner{}, state.NewMemoryStore(), nil, nil)

	a := message("")
	a.Type = "typing"
	replies, err := b.OnTurn(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestOnTurn_Errors(t *testing.T) {
	b := New(&echoRunner{}, failingStore{}, nil, nil)

	_, err := b.OnTurn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilActivity)

	_, err = b.OnTurn(context.Background(), message("hi"))
	assert.ErrorContains(t, err, "load conversation state")
}
