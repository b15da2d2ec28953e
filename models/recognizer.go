package models

// DateToken is one datetime entity as reduced by the recognizer: a type tag
// ("date", "daterange" or "duration") and its alternative timex strings.
type DateToken struct {
	Type  string   `json:"type"`
	Timex []string `json:"timex"`
}

// Money is a currency entity.
type Money struct {
	Number float64 `json:"number"`
	Units  string  `json:"units"`
}

// RecognizerEntities holds the entities the booking flow understands.
type RecognizerEntities struct {
	FromCity []string    `json:"from_city,omitempty"`
	ToCity   []string    `json:"to_city,omitempty"`
	Datetime []DateToken `json:"datetime,omitempty"`
	Money    []Money     `json:"money,omitempty"`
	Budget   []string    `json:"budget,omitempty"`
}

// RecognizerResult is the normalized output of any NLU backend.
type RecognizerResult struct {
	Text     string             `json:"text"`
	Intents  map[string]float64 `json:"intents"`
	Entities RecognizerEntities `json:"entities"`
}
