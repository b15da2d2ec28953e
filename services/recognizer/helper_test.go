package recognizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"flybot/models"
	"flybot/services/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer struct {
	result *models.RecognizerResult
	err    error
}

func (s stubRecognizer) Recognize(ctx context.Context, text string) (*models.RecognizerResult, error) {
	return s.result, s.err
}

func fixedResolver() *timex.Resolver {
	return timex.NewResolver(timex.FixedClock(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)))
}

func TestTopIntent(t *testing.T) {
	intent, score := TopIntent(&models.RecognizerResult{Intents: map[string]float64{"None": 0.3, IntentBookFlight: 0.6}})
	assert.Equal(t, IntentBookFlight, intent)
	assert.InDelta(t, 0.6, score, 1e-9)

	intent, _ = TopIntent(&models.RecognizerResult{})
	assert.Empty(t, intent)

	intent, _ = TopIntent(&models.RecognizerResult{Intents: map[string]float64{"b": 0.5, "a": 0.5}})
	assert.Equal(t, "a", intent)
}

func TestExecuteQuery_BookFlight(t *testing.T) {
	h := NewHelper(stubRecognizer{result: &models.RecognizerResult{
		Intents: map[string]float64{IntentBookFlight: 0.9},
		Entities: models.RecognizerEntities{
			FromCity: []string{"Paris"},
			ToCity:   []string{"Berlin"},
			Datetime: []models.DateToken{
				{Type: timex.TypeDate, Timex: []string{"2024-03-05"}},
				{Type: timex.TypeDuration, Timex: []string{"P2D"}},
			},
			Money: []models.Money{{Number: 300, Units: "Euro"}},
		},
	}}, fixedResolver(), nil)

	intent, details := h.ExecuteQuery(context.Background(), "anything")
	require.NotNil(t, details)
	assert.Equal(t, IntentBookFlight, intent)
	assert.Equal(t, models.BookingDetails{
		FromCity: "Paris",
		ToCity:   "Berlin",
		FromDate: "05-03-2024",
		ToDate:   "07-03-2024",
		Budget:   "300.00 Euro",
	}, *details)
}

func TestExecuteQuery_BudgetTextAndBadDates(t *testing.T) {
	h := NewHelper(stubRecognizer{result: &models.RecognizerResult{
		Intents: map[string]float64{IntentBookFlight: 0.9},
		Entities: models.RecognizerEntities{
			Datetime: []models.DateToken{{Type: timex.TypeDuration, Timex: []string{"soon"}}},
			Budget:   []string{"cheap"},
		},
	}}, fixedResolver(), nil)

	_, details := h.ExecuteQuery(context.Background(), "anything")
	require.NotNil(t, details)
	assert.Empty(t, details.FromDate)
	assert.Empty(t, details.ToDate)
	assert.Equal(t, "cheap", details.Budget)
}

func TestExecuteQuery_OtherIntentOrFailure(t *testing.T) {
	h := NewHelper(stubRecognizer{result: &models.RecognizerResult{Intents: map[string]float64{IntentNone: 0.8}}}, fixedResolver(), nil)
	intent, details := h.ExecuteQuery(context.Background(), "hello")
	assert.Equal(t, IntentNone, intent)
	assert.Nil(t, details)

	h = NewHelper(stubRecognizer{err: errors.New("boom")}, fixedResolver(), nil)
	intent, details = h.ExecuteQuery(context.Background(), "hello")
	assert.Empty(t, intent)
	assert.Nil(t, details)
}

func TestParseGeminiAnswer(t *testing.T) {
	answer := "```json\n{\"intent\": \"ReserverVoyage\", \"score\": 0.8, \"entities\": {\"to_city\": [\"Rome\"], \"datetime\": [{\"type\": \"duration\", \"timex\": [\"P1W\"]}]}}\n```"

	result, err := parseGeminiAnswer("to Rome for a week", answer)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{IntentBookFlight: 0.8}, result.Intents)
	assert.Equal(t, []string{"Rome"}, result.Entities.ToCity)
	assert.Equal(t, []models.DateToken{{Type: "duration", Timex: []string{"P1W"}}}, result.Entities.Datetime)

	_, err = parseGeminiAnswer("x", "not json")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "120.50 Dollar", FormatMoney(models.Money{Number: 120.5, Units: "Dollar"}))
	assert.Equal(t, "75.00", FormatMoney(models.Money{Number: 75}))
}
