package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flybot/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiPrompt = `You are the language understanding service of a flight booking bot.
Today is %s. Classify the user message and extract entities.
Answer with JSON only, using exactly this shape:
{"intent": "ReserverVoyage" or "None", "score": number between 0 and 1,
 "entities": {"from_city": [string], "to_city": [string],
   "datetime": [{"type": "date" | "daterange" | "duration", "timex": [string]}],
   "money": [{"number": number, "units": string}], "budget": [string]}}
Dates use TIMEX notation: "2024-03-05", "XXXX-03-05", "(2024-06-01,2024-06-08,P1W)", "P3D".
Omit entities that are not mentioned.
User message: %q`

// GeminiRecognizer asks a Gemini model for intent and entities.
type GeminiRecognizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	now    func() time.Time
}

// NewGeminiRecognizer connects to Gemini with apiKey.
func NewGeminiRecognizer(ctx context.Context, apiKey, modelName string) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "models/gemini-1.5-flash"
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)
	return &GeminiRecognizer{client: client, model: model, now: time.Now}, nil
}

// Recognize prompts the model and decodes its JSON answer.
func (g *GeminiRecognizer) Recognize(ctx context.Context, text string) (*models.RecognizerResult, error) {
	prompt := fmt.Sprintf(geminiPrompt, g.now().Format("2006-01-02"), text)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return parseGeminiAnswer(text, sb.String())
}

// Close releases the underlying client.
func (g *GeminiRecognizer) Close() error {
	return g.client.Close()
}

type geminiAnswer struct {
	Intent   string                    `json:"intent"`
	Score    float64                   `json:"score"`
	Entities models.RecognizerEntities `json:"entities"`
}

func parseGeminiAnswer(text, answer string) (*models.RecognizerResult, error) {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")

	var a geminiAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &a); err != nil {
		return nil, fmt.Errorf("gemini: decode answer: %w", err)
	}
	if a.Intent == "" {
		a.Intent = IntentNone
	}
	return &models.RecognizerResult{
		Text:     text,
		Intents:  map[string]float64{a.Intent: a.Score},
		Entities: a.Entities,
	}, nil
}
