package dialog

import (
	"fmt"
	"strings"

	"flybot/models"
	"flybot/services/telemetry"
)

// Booking waterfall steps.
const (
	stepFromCity = iota
	stepToCity
	stepFromDate
	stepToDate
	stepBudget
	stepConfirm
)

// Booking prompts.
const (
	MsgAskFromCity = "From what city will you be departing?"
	MsgAskToCity   = "To what city would you like to travel?"
	MsgAskFromDate = "When do you want to leave?"
	MsgAskToDate   = "When do you want to come back?"
	MsgAskBudget   = "What is your budget?"
	MsgDateRetry   = "I'm sorry, for best results, please enter your travel date including the month, day and year."
	MsgHelp        = "Show Help..."
	MsgCancelling  = "Cancelling"
)

// advanceBooking runs steps until one needs an answer from the user.
// Steps whose field is already known are skipped.
func (d *Dialog) advanceBooking(t *turn) {
	b := &t.state.Booking
	for {
		switch t.state.Step {
		case stepFromCity:
			if b.FromCity == "" {
				t.send(MsgAskFromCity, models.InputHintExpectingInput)
				return
			}
		case stepToCity:
			if b.ToCity == "" {
				t.send(MsgAskToCity, models.InputHintExpectingInput)
				return
			}
		case stepFromDate:
			if b.FromDate == "" {
				t.send(MsgAskFromDate, models.InputHintExpectingInput)
				return
			}
		case stepToDate:
			if b.ToDate == "" {
				t.send(MsgAskToDate, models.InputHintExpectingInput)
				return
			}
		case stepBudget:
			if b.Budget == "" {
				t.send(MsgAskBudget, models.InputHintExpectingInput)
				return
			}
		case stepConfirm:
			t.send(confirmationMessage(*b)+confirmChoices, models.InputHintExpectingInput)
			return
		default:
			return
		}
		t.state.Step++
		t.state.Retries = 0
	}
}

// continueBooking stores the answer to the pending prompt and moves on.
func (d *Dialog) continueBooking(t *turn, text string) {
	b := &t.state.Booking
	answer := strings.TrimSpace(text)

	switch t.state.Step {
	case stepFromCity:
		b.FromCity = answer
	case stepToCity:
		b.ToCity = answer
	case stepFromDate, stepToDate:
		date, ok := d.interpretDate(t.ctx, answer, t.state.Step == stepToDate)
		if !ok {
			t.state.Retries++
			t.send(MsgDateRetry, models.InputHintExpectingInput)
			return
		}
		if t.state.Step == stepFromDate {
			b.FromDate = date
		} else {
			b.ToDate = date
		}
	case stepBudget:
		b.Budget = answer
	case stepConfirm:
		confirmed, ok := parseConfirmation(answer)
		if !ok {
			t.state.Retries++
			t.send(confirmationMessage(*b)+confirmChoices, models.InputHintExpectingInput)
			return
		}
		d.bookingFinalStep(t, confirmed)
		return
	}

	t.state.Step++
	t.state.Retries = 0
	d.advanceBooking(t)
}

// bookingFinalStep records the user's answer and hands control back to the
// main dialog.
func (d *Dialog) bookingFinalStep(t *turn, confirmed bool) {
	b := t.state.Booking
	properties := map[string]string{
		"origin":         b.FromCity,
		"destination":    b.ToCity,
		"departure_date": b.FromDate,
		"return_date":    b.ToDate,
		"budget":         b.Budget,
	}

	if confirmed {
		d.telemetry.TrackTrace("YES answer", properties, telemetry.Information)
		d.finalStep(t, &b)
		return
	}
	d.telemetry.TrackTrace("NO answer", properties, telemetry.Error)
	d.finalStep(t, nil)
}

// interrupt handles help and cancel requests during the booking.
func (d *Dialog) interrupt(t *turn, text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "help", "?":
		t.send(MsgHelp, models.InputHintExpectingInput)
		return true
	case "cancel", "quit":
		t.send(MsgCancelling, models.InputHintIgnoringInput)
		*t.state = models.ConversationState{UserID: t.state.UserID}
		return true
	}
	return false
}

func confirmationMessage(b models.BookingDetails) string {
	return fmt.Sprintf("Please confirm that:\n"+
		"- You want to **book a flight**.\n"+
		"- From **%s** to **%s**.\n"+
		"- Between the **%s** and the **%s**.\n"+
		"- With a budget of **%s**.",
		b.FromCity, b.ToCity, b.FromDate, b.ToDate, b.Budget)
}
