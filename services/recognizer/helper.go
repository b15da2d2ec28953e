package recognizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"flybot/models"

	"go.uber.org/zap"
)

// TopIntent returns the highest scoring intent, or "" when there is none.
// Ties go to the alphabetically first name.
func TopIntent(result *models.RecognizerResult) (string, float64) {
	if result == nil || len(result.Intents) == 0 {
		return "", 0
	}
	names := make([]string, 0, len(result.Intents))
	for name := range result.Intents {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestScore := names[0], result.Intents[names[0]]
	for _, name := range names[1:] {
		if score := result.Intents[name]; score > bestScore {
			best, bestScore = name, score
		}
	}
	return best, bestScore
}

// Helper runs the recognizer and turns its result into booking details.
type Helper struct {
	Recognizer Recognizer
	Resolver   DateResolver
	Logger     *zap.Logger
}

// NewHelper wires a recognizer with the date resolver.
func NewHelper(rec Recognizer, resolver DateResolver, logger *zap.Logger) *Helper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Helper{Recognizer: rec, Resolver: resolver, Logger: logger}
}

// ExecuteQuery returns the top intent and, for the book flight intent, the
// details found in the utterance. Recognizer failures are logged and
// reported as no intent.
func (h *Helper) ExecuteQuery(ctx context.Context, text string) (string, *models.BookingDetails) {
	if h.Recognizer == nil {
		return "", nil
	}
	result, err := h.Recognizer.Recognize(ctx, text)
	if err != nil {
		h.Logger.Warn("recognizer call failed", zap.Error(err))
		return "", nil
	}

	intent, score := TopIntent(result)
	h.Logger.Debug("recognized utterance", zap.String("intent", intent), zap.Float64("score", score))
	if intent != IntentBookFlight {
		return intent, nil
	}
	return intent, h.ExtractBookingDetails(result)
}

// ExtractBookingDetails fills booking details from recognized entities.
func (h *Helper) ExtractBookingDetails(result *models.RecognizerResult) *models.BookingDetails {
	details := &models.BookingDetails{}
	ents := result.Entities

	if len(ents.FromCity) > 0 {
		details.FromCity = ents.FromCity[0]
	}
	if len(ents.ToCity) > 0 {
		details.ToCity = ents.ToCity[0]
	}

	if len(ents.Datetime) > 0 && h.Resolver != nil {
		from, to, err := h.Resolver.Resolve(ents.Datetime)
		if err != nil {
			h.Logger.Warn("could not resolve travel dates", zap.Error(err), zap.Any("datetime", ents.Datetime))
		} else {
			details.FromDate, details.ToDate = from, to
		}
	}

	switch {
	case len(ents.Money) > 0:
		details.Budget = FormatMoney(ents.Money[0])
	case len(ents.Budget) > 0:
		details.Budget = ents.Budget[0]
	}
	return details
}

// FormatMoney renders an amount with two decimals followed by its units.
func FormatMoney(m models.Money) string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", m.Number, m.Units))
}
