// Package dialog runs the booking conversation one turn at a time.
//
// A conversation is a main dialog that asks what the user wants, hands book
// flight requests to the booking waterfall, and restarts itself when the
// booking ends. All progress lives in models.ConversationState so a turn can
// be served by any process that can load it.
package dialog

import (
	"context"

	"flybot/models"
	"flybot/services/recognizer"
	"flybot/services/telemetry"
	"flybot/services/timex"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Values of ConversationState.Active; empty means no dialog is running.
const (
	activeMain    = "main"
	activeBooking = "booking"
)

// Bot messages.
const (
	MsgIntro            = "Hi, how can I help You?"
	MsgWhatElse         = "What else can I do for you?"
	MsgDidNotUnderstand = "Sorry, I did not understand. Can you rephrase your question?"
	MsgBooked           = "Thank you, your flight is booked. Check your email for the confirmation."
)

// Reply is one message the bot sends back.
type Reply struct {
	Text      string
	InputHint string
}

// Query extracts the intent and booking details from an utterance.
type Query interface {
	ExecuteQuery(ctx context.Context, text string) (string, *models.BookingDetails)
}

// BookingSink receives confirmed bookings.
type BookingSink interface {
	Submit(ctx context.Context, payload models.BookingPayload) error
}

// Config wires a Dialog.
type Config struct {
	Query      Query
	Recognizer recognizer.Recognizer // used to read free-text dates
	Resolver   *timex.Resolver
	Telemetry  telemetry.Client
	Bookings   BookingSink
	Logger     *zap.Logger
	NewID      func() string
}

// Dialog is stateless; everything it needs between turns is in the state.
type Dialog struct {
	query      Query
	recognizer recognizer.Recognizer
	resolver   *timex.Resolver
	telemetry  telemetry.Client
	bookings   BookingSink
	logger     *zap.Logger
	newID      func() string
}

func New(cfg Config) *Dialog {
	d := &Dialog{
		query:      cfg.Query,
		recognizer: cfg.Recognizer,
		resolver:   cfg.Resolver,
		telemetry:  cfg.Telemetry,
		bookings:   cfg.Bookings,
		logger:     cfg.Logger,
		newID:      cfg.NewID,
	}
	if d.resolver == nil {
		d.resolver = timex.NewResolver(timex.SystemClock)
	}
	if d.telemetry == nil {
		d.telemetry = telemetry.NullClient{}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.newID == nil {
		d.newID = func() string { return uuid.New().String() }
	}
	return d
}

type turn struct {
	ctx     context.Context
	state   *models.ConversationState
	replies []Reply
}

func (t *turn) send(text, hint string) {
	t.replies = append(t.replies, Reply{Text: text, InputHint: hint})
}

// Run advances the conversation with the user's message and returns the
// bot's replies. The state is updated in place.
func (d *Dialog) Run(ctx context.Context, st *models.ConversationState, text string) []Reply {
	t := &turn{ctx: ctx, state: st}

	switch st.Active {
	case activeMain:
		d.actStep(t, text)
	case activeBooking:
		if d.interrupt(t, text) {
			break
		}
		d.continueBooking(t, text)
	default:
		// Nothing running: the message only starts the conversation.
		d.introStep(t, "")
	}
	return t.replies
}

// introStep (re)starts the main dialog and asks what the user wants.
func (d *Dialog) introStep(t *turn, message string) {
	if message == "" {
		message = MsgIntro
	}
	t.state.Active = activeMain
	t.state.Step = 0
	t.state.Retries = 0
	t.state.Booking = models.BookingDetails{}
	t.state.MainDialogUUID = d.newID()
	t.send(message, models.InputHintExpectingInput)
}

// actStep sends the answer to the recognizer and starts a booking when the
// user asked for one.
func (d *Dialog) actStep(t *turn, text string) {
	intent, details := d.query.ExecuteQuery(t.ctx, text)
	if intent == recognizer.IntentBookFlight && details != nil {
		t.state.Active = activeBooking
		t.state.Step = stepFromCity
		t.state.Retries = 0
		t.state.Booking = *details
		d.advanceBooking(t)
		return
	}

	t.send(MsgDidNotUnderstand, models.InputHintIgnoringInput)
	d.finalStep(t, nil)
}

// finalStep closes the main dialog and starts the next one.
func (d *Dialog) finalStep(t *turn, booked *models.BookingDetails) {
	if booked != nil {
		d.submit(t, *booked)
		t.send(MsgBooked, models.InputHintIgnoringInput)
	}
	d.introStep(t, MsgWhatElse)
}

func (d *Dialog) submit(t *turn, details models.BookingDetails) {
	if d.bookings == nil {
		return
	}
	payload := models.BookingPayload{
		UserID:         t.state.UserID,
		MainDialogUUID: t.state.MainDialogUUID,
		Details:        details,
	}
	if conv, ok := ConversationIDFrom(t.ctx); ok {
		payload.ConversationID = conv
	}
	if err := d.bookings.Submit(t.ctx, payload); err != nil {
		d.logger.Error("failed to submit booking", zap.Error(err), zap.String("mainDialogUuid", payload.MainDialogUUID))
	}
}

type conversationKey struct{}

// WithConversationID attaches the conversation id to ctx for the booking sink.
func WithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationKey{}, id)
}

// ConversationIDFrom reads the id set by WithConversationID.
func ConversationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(conversationKey{}).(string)
	return id, ok
}
