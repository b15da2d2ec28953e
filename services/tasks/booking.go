package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flybot/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeBookingConfirmed = "booking:confirmed"

// NewBookingTask builds the task for a confirmed booking. Bookings from the
// same main dialog run share a task id so a resubmission is dropped.
func NewBookingTask(payload models.BookingPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirmed, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	if payload.MainDialogUUID != "" {
		opts = append(opts, asynq.TaskID("booking:"+payload.MainDialogUUID))
	}
	return task, opts, nil
}

// ParseBookingTask decodes the payload of a booking:confirmed task.
func ParseBookingTask(task *asynq.Task) (models.BookingPayload, error) {
	var p models.BookingPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid booking payload: %w", err)
	}
	return p, nil
}

// Enqueuer is the part of *asynq.Client the queue sink uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink hands confirmed bookings to the fulfilment worker.
type QueueSink struct {
	client Enqueuer
	logger *zap.Logger
}

func NewQueueSink(client Enqueuer, logger *zap.Logger) *QueueSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueSink{client: client, logger: logger}
}

func (s *QueueSink) Submit(ctx context.Context, payload models.BookingPayload) error {
	if s.client == nil {
		return errors.New("asynq client is nil, booking cannot be enqueued")
	}
	task, opts, err := NewBookingTask(payload)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Info("Booking already queued", zap.String("mainDialogUuid", payload.MainDialogUUID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue booking: %w", err)
	}
	s.logger.Info("Booking queued", zap.String("taskId", info.ID), zap.String("mainDialogUuid", payload.MainDialogUUID))
	return nil
}

// LogSink only logs confirmed bookings. Used when no queue is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(ctx context.Context, payload models.BookingPayload) error {
	d := payload.Details
	s.logger.Info("Booking confirmed",
		zap.String("conversationId", payload.ConversationID),
		zap.String("mainDialogUuid", payload.MainDialogUUID),
		zap.String("origin", d.FromCity),
		zap.String("destination", d.ToCity),
		zap.String("departure_date", d.FromDate),
		zap.String("return_date", d.ToDate),
		zap.String("budget", d.Budget),
	)
	return nil
}
