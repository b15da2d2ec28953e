package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"flybot/models"
)

// LUISConfig locates a published LUIS application.
type LUISConfig struct {
	AppID    string
	Key      string
	Endpoint string // e.g. https://myresource.cognitiveservices.azure.com/
	Slot     string // "production" or "staging"
}

// LUISRecognizer calls the LUIS v3 prediction endpoint.
type LUISRecognizer struct {
	cfg    LUISConfig
	client *http.Client
}

// NewLUISRecognizer returns a recognizer for cfg. A nil client gets a
// 5 second timeout.
func NewLUISRecognizer(cfg LUISConfig, client *http.Client) (*LUISRecognizer, error) {
	if cfg.AppID == "" || cfg.Key == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("luis: %w", ErrNotConfigured)
	}
	if cfg.Slot == "" {
		cfg.Slot = "production"
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &LUISRecognizer{cfg: cfg, client: client}, nil
}

type luisResponse struct {
	Query      string `json:"query"`
	Prediction struct {
		TopIntent string `json:"topIntent"`
		Intents   map[string]struct {
			Score float64 `json:"score"`
		} `json:"intents"`
		Entities map[string]json.RawMessage `json:"entities"`
	} `json:"prediction"`
}

type luisDatetime struct {
	Type   string `json:"type"`
	Values []struct {
		Timex string `json:"timex"`
	} `json:"values"`
}

func (r *LUISRecognizer) predictURL(text string) (string, error) {
	u, err := url.Parse(r.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("luis: invalid endpoint: %w", err)
	}
	u.Path = path.Join("/", u.Path, "luis/prediction/v3.0/apps", r.cfg.AppID, "slots", r.cfg.Slot, "predict")
	q := url.Values{}
	q.Set("query", text)
	q.Set("show-all-intents", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Recognize sends text to LUIS and normalizes the prediction.
func (r *LUISRecognizer) Recognize(ctx context.Context, text string) (*models.RecognizerResult, error) {
	endpoint, err := r.predictURL(text)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("luis: build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", r.cfg.Key)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("luis: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("luis: status %d: %v", resp.StatusCode, errResp)
	}

	var body luisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("luis: decode prediction: %w", err)
	}
	return body.toResult(text), nil
}

func (b *luisResponse) toResult(text string) *models.RecognizerResult {
	result := &models.RecognizerResult{
		Text:    text,
		Intents: make(map[string]float64, len(b.Prediction.Intents)),
	}
	for name, intent := range b.Prediction.Intents {
		result.Intents[name] = intent.Score
	}

	ents := b.Prediction.Entities
	result.Entities.FromCity = stringEntities(ents["from_city"])
	result.Entities.ToCity = stringEntities(ents["to_city"])
	result.Entities.Budget = stringEntities(ents["budget"])

	for _, key := range []string{"datetimeV2", "datetime"} {
		var dts []luisDatetime
		if raw, ok := ents[key]; ok && json.Unmarshal(raw, &dts) == nil {
			for _, dt := range dts {
				token := models.DateToken{Type: dt.Type}
				for _, v := range dt.Values {
					token.Timex = append(token.Timex, v.Timex)
				}
				result.Entities.Datetime = append(result.Entities.Datetime, token)
			}
		}
	}

	if raw, ok := ents["money"]; ok {
		var money []models.Money
		if err := json.Unmarshal(raw, &money); err == nil {
			result.Entities.Money = money
		}
	}
	return result
}

// stringEntities reads a machine-learned entity list. Structured entities
// come back as objects; only plain strings are kept.
func stringEntities(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
