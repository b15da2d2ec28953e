package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"flybot/config"
	"flybot/cron"
	"flybot/database"
	bookingRepo "flybot/database/repository/bookings"
	telemetryRepo "flybot/database/repository/telemetry"
	"flybot/handlers"
	"flybot/middleware"
	"flybot/routes"
	"flybot/services/bot"
	"flybot/services/connector"
	"flybot/services/dialog"
	"flybot/services/recognizer"
	"flybot/services/state"
	"flybot/services/tasks"
	"flybot/services/telemetry"
	"flybot/services/timex"
	"flybot/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.Get()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	config.WatchConfig(func(e fsnotify.Event) {
		level := config.Get().LogLevel
		if utils.SetLogLevel(level) {
			logger.Info("main: log level reloaded", zap.String("file", e.Name), zap.String("level", level))
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]utils.HealthCheck{}

	if cfg.TelemetrySink == "mongo" || cfg.BookingQueueEnabled {
		if err := database.InitDB(ctx); err != nil {
			logger.Fatal("main: failed to initialize database", zap.Error(err))
		}
		defer database.Close(context.Background())
		checks["mongo"] = func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }
	}

	// Conversation state.
	var store state.Store = state.NewMemoryStore()
	if cfg.StateStore == "redis" {
		client, err := utils.NewRedisClient(ctx, cfg.RedisStateDB)
		if err != nil {
			logger.Fatal("main: failed to initialize state store", zap.Error(err))
		}
		defer client.Close()
		store = state.NewRedisStore(client, cfg.StateTTL())
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// Telemetry.
	var tel telemetry.Client = telemetry.NullClient{}
	switch cfg.TelemetrySink {
	case "log":
		tel = telemetry.NewLogClient(logger)
	case "mongo":
		tel = telemetry.NewBufferedClient(telemetryRepo.NewMongoTelemetryRepo(database.DB()), cfg.TelemetryQueueSize, logger)
	}
	defer tel.Flush()

	// Language understanding.
	rec, closeRec := newRecognizer(ctx, cfg, logger)
	defer closeRec()
	resolver := timex.NewResolver(timex.SystemClock)
	helper := recognizer.NewHelper(rec, resolver, logger)

	// Booking fulfilment.
	var bookings dialog.BookingSink = tasks.NewLogSink(logger)
	if cfg.BookingQueueEnabled {
		db := database.DB()
		if err := bookingRepo.EnsureIndexes(ctx, db); err != nil {
			logger.Warn("main: failed to ensure booking indexes", zap.Error(err))
		}
		asynqClient := asynq.NewClient(cron.RedisOpt())
		defer asynqClient.Close()
		bookings = tasks.NewQueueSink(asynqClient, logger)

		worker := cron.InitBookingWorker(ctx, bookingRepo.NewMongoBookingRepo(db))
		defer worker.Shutdown()
	}

	dlg := dialog.New(dialog.Config{
		Query:      helper,
		Recognizer: rec,
		Resolver:   resolver,
		Telemetry:  tel,
		Bookings:   bookings,
		Logger:     logger,
	})
	flybot := bot.New(dlg, store, tel, logger)

	// Channel authentication.
	var validator *utils.ChannelValidator
	if cfg.BotAppID != "" {
		v, err := utils.NewChannelValidator(cfg.BotOpenIDKeysURL, cfg.BotAppID)
		if err != nil {
			logger.Fatal("main: failed to initialize channel authentication", zap.Error(err))
		}
		defer v.Close()
		validator = v
	} else {
		logger.Warn("main: BOT_APP_ID is empty, channel authentication is disabled")
	}
	sender := connector.New(ctx, connector.Config{
		AppID:       cfg.BotAppID,
		AppPassword: cfg.BotAppPassword,
		TokenURL:    cfg.BotTokenURL,
		Scope:       cfg.BotTokenScope,
	})

	utils.StartHealthMonitor(ctx, 60*time.Second, checks)

	messagesHandler := handlers.NewMessagesHandler(flybot, sender)
	handlerBundle := &handlers.HandlerBundle{
		BotValidator:        validator,
		PostMessagesHandler: messagesHandler.PostActivity,
		HealthHandler:       handlers.Health,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
		return
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newRecognizer builds the configured NLU backend. A missing backend leaves
// the bot running; every utterance is then treated as not understood.
func newRecognizer(ctx context.Context, cfg config.Config, logger *zap.Logger) (recognizer.Recognizer, func()) {
	noop := func() {}

	switch cfg.Recognizer {
	case "luis":
		luis, err := recognizer.NewLUISRecognizer(recognizer.LUISConfig{
			AppID:    cfg.LuisAppID,
			Key:      cfg.LuisPredKey,
			Endpoint: cfg.LuisPredEndpoint,
			Slot:     cfg.LuisSlot,
		}, nil)
		if err != nil {
			logger.Warn("main: LUIS recognizer unavailable", zap.Error(err))
			return nil, noop
		}
		return luis, noop

	case "gemini":
		gemini, err := recognizer.NewGeminiRecognizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("main: Gemini recognizer unavailable", zap.Error(err))
			return nil, noop
		}
		return gemini, func() { _ = gemini.Close() }
	}

	logger.Warn("main: no recognizer configured", zap.String("recognizer", cfg.Recognizer))
	return nil, noop
}
