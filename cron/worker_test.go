package cron

import (
	"context"
	"errors"
	"testing"

	"flybot/models"
	"flybot/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBookings struct {
	records []models.BookingRecord
	err     error
}

func (m *memoryBookings) Create(ctx context.Context, record models.BookingRecord) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.records = append(m.records, record)
	return "booking-1", nil
}

func TestHandleBookingTask(t *testing.T) {
	store := &memoryBookings{}
	task, _, err := tasks.NewBookingTask(models.BookingPayload{
		ConversationID: "conv-1",
		MainDialogUUID: "run-1",
		Details:        models.BookingDetails{FromCity: "Paris", ToCity: "Rome"},
	})
	require.NoError(t, err)

	require.NoError(t, HandleBookingTask(store)(context.Background(), task))
	require.Len(t, store.records, 1)
	assert.Equal(t, "Confirmed", store.records[0].Status)
	assert.Equal(t, "run-1", store.records[0].MainDialogUUID)
	assert.Equal(t, "Rome", store.records[0].Details.ToCity)
}

func TestHandleBookingTask_BadPayloadSkipsRetry(t *testing.T) {
	err := HandleBookingTask(&memoryBookings{})(context.Background(), asynq.NewTask(tasks.TypeBookingConfirmed, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleBookingTask_StoreFailureIsRetried(t *testing.T) {
	task, _, err := tasks.NewBookingTask(models.BookingPayload{MainDialogUUID: "run-2"})
	require.NoError(t, err)

	err = HandleBookingTask(&memoryBookings{err: errors.New("mongo down")})(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
