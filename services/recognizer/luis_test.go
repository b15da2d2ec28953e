package recognizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"flybot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const luisBody = `{
  "query": "book a flight from Paris to Berlin on march 5 for 3 days with 300 euros",
  "prediction": {
    "topIntent": "ReserverVoyage",
    "intents": {"ReserverVoyage": {"score": 0.97}, "None": {"score": 0.02}},
    "entities": {
      "from_city": ["Paris"],
      "to_city": ["Berlin", {"text": "ignored"}],
      "datetimeV2": [
        {"type": "date", "values": [{"timex": "XXXX-03-05", "resolution": []}]},
        {"type": "duration", "values": [{"timex": "P3D"}]}
      ],
      "money": [{"number": 300, "units": "Euro"}]
    }
  }
}`

func TestLUISRecognizer_Recognize(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(luisBody))
	}))
	defer srv.Close()

	rec, err := NewLUISRecognizer(LUISConfig{AppID: "app-1", Key: "secret", Endpoint: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)

	result, err := rec.Recognize(context.Background(), "from Paris to Berlin")
	require.NoError(t, err)

	assert.Equal(t, "/luis/prediction/v3.0/apps/app-1/slots/production/predict", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "from Paris to Berlin", gotQuery)

	assert.InDelta(t, 0.97, result.Intents[IntentBookFlight], 1e-9)
	assert.Equal(t, []string{"Paris"}, result.Entities.FromCity)
	assert.Equal(t, []string{"Berlin"}, result.Entities.ToCity)
	assert.Equal(t, []models.DateToken{
		{Type: "date", Timex: []string{"XXXX-03-05"}},
		{Type: "duration", Timex: []string{"P3D"}},
	}, result.Entities.Datetime)
	assert.Equal(t, []models.Money{{Number: 300, Units: "Euro"}}, result.Entities.Money)
}

func TestLUISRecognizer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": "401", "message": "bad key"}}`))
	}))
	defer srv.Close()

	rec, err := NewLUISRecognizer(LUISConfig{AppID: "a", Key: "k", Endpoint: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = rec.Recognize(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewLUISRecognizer_RequiresCredentials(t *testing.T) {
	_, err := NewLUISRecognizer(LUISConfig{Endpoint: "https://example.com"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
