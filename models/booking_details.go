package models

import "time"

// BookingDetails is what the booking dialog collects from the user.
type BookingDetails struct {
	FromCity string `bson:"from_city" json:"from_city"`
	ToCity   string `bson:"to_city" json:"to_city"`
	FromDate string `bson:"from_date" json:"from_date"` // DD-MM-YYYY
	ToDate   string `bson:"to_date" json:"to_date"`     // DD-MM-YYYY
	Budget   string `bson:"budget" json:"budget"`
}

// BookingRecord is a confirmed booking as stored by the fulfilment worker.
type BookingRecord struct {
	ID             string         `bson:"id" json:"id"`
	ConversationID string         `bson:"conversation_id" json:"conversation_id"`
	UserID         string         `bson:"user_id" json:"user_id"`
	MainDialogUUID string         `bson:"main_dialog_uuid" json:"main_dialog_uuid"`
	Details        BookingDetails `bson:"details" json:"details"`
	Status         string         `bson:"status" json:"status"` // "Confirmed"
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
}

// BookingPayload is the body of a booking:confirmed task.
type BookingPayload struct {
	ConversationID string         `json:"conversationId"`
	UserID         string         `json:"userId"`
	MainDialogUUID string         `json:"mainDialogUuid"`
	Details        BookingDetails `json:"details"`
}
