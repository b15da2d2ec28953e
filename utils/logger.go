package utils

import (
	"log"
	"strings"

	"flybot/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerKey is the gin context key of the request-scoped logger.
const LoggerKey = "logger"

// Global logger instance
var Logger *zap.Logger

// logLevel backs the global logger's level so it can change at runtime.
var logLevel = zap.NewAtomicLevel()

// InitializeLogger sets up the logging configuration
func InitializeLogger() {
	var cfg zap.Config

	if config.IsProduction() {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logLevel.SetLevel(cfg.Level.Level())
	if lvl := strings.TrimSpace(config.Get().LogLevel); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			logLevel.SetLevel(parsed)
		}
	}
	cfg.Level = logLevel

	// Create logger
	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(Logger)
}

// GetLogger retrieves the global logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}

// SetLogLevel changes the level of the global logger. Unknown levels are ignored.
func SetLogLevel(level string) bool {
	parsed, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return false
	}
	logLevel.SetLevel(parsed)
	return true
}
