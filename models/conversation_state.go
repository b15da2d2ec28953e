package models

// ConversationState is the per-conversation dialog state kept between turns.
type ConversationState struct {
	// Active is the running dialog: "" (none), "main" or "booking".
	Active string `json:"active"`
	// Step is the waterfall step the active dialog is waiting on.
	Step int `json:"step"`
	// Retries counts failed prompt attempts for the current step.
	Retries int `json:"retries"`

	Booking        BookingDetails `json:"booking"`
	MainDialogUUID string         `json:"mainDialogUuid"`
	UserID         string         `json:"userId"`
}
