package recognizer

import (
	"context"
	"errors"

	"flybot/models"
)

// Intents the booking bot acts on.
const (
	IntentBookFlight = "ReserverVoyage"
	IntentNone       = "None"
)

// ErrNotConfigured is returned when the selected NLU backend has no credentials.
var ErrNotConfigured = errors.New("recognizer is not configured")

// Recognizer classifies an utterance and extracts its entities.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (*models.RecognizerResult, error)
}

// DateResolver converts recognizer date tokens into a start and end date.
type DateResolver interface {
	Resolve(tokens []models.DateToken) (string, string, error)
}
