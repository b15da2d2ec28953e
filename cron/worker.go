package cron

import (
	"context"
	"fmt"
	"time"

	"flybot/config"
	"flybot/models"
	"flybot/services/tasks"
	"flybot/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingStore persists confirmed bookings.
type BookingStore interface {
	Create(ctx context.Context, record models.BookingRecord) (string, error)
}

// RedisOpt is the asynq connection shared by the queue client and the worker.
func RedisOpt() asynq.RedisClientOpt {
	cfg := config.Get()
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// InitBookingWorker runs the fulfilment worker in the background and returns
// the server so the caller can shut it down.
func InitBookingWorker(ctx context.Context, store BookingStore) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirmed, HandleBookingTask(store))

	go monitorRedisConnection(ctx)

	go func() {
		logger.Info("[BookingWorker] Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[BookingWorker] Failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("[BookingWorker] Max retry attempts reached. Exiting.")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleBookingTask stores the booking carried by a booking:confirmed task.
func HandleBookingTask(store BookingStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		p, err := tasks.ParseBookingTask(task)
		if err != nil {
			logger.Error("[BookingHandler] Invalid payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		id, err := store.Create(ctx, models.BookingRecord{
			ConversationID: p.ConversationID,
			UserID:         p.UserID,
			MainDialogUUID: p.MainDialogUUID,
			Details:        p.Details,
			Status:         "Confirmed",
		})
		if err != nil {
			logger.Error("[BookingHandler] Failed to store booking", zap.String("mainDialogUuid", p.MainDialogUUID), zap.Error(err))
			return err
		}

		logger.Info("[BookingHandler] Booking stored",
			zap.String("bookingId", id),
			zap.String("origin", p.Details.FromCity),
			zap.String("destination", p.Details.ToCity))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context) {
	opt := RedisOpt()
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				utils.GetLogger().Warn("[BookingWorker] Redis connection lost", zap.Error(err))
			}
		}
	}
}
