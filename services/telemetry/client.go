package telemetry

import (
	"go.uber.org/zap"
)

// Severity levels follow the monitoring service's trace levels.
type Severity int

const (
	Verbose Severity = iota
	Information
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Verbose:
		return "Verbose"
	case Information:
		return "Information"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Client records bot events and traces.
type Client interface {
	TrackEvent(name string, properties map[string]string, measurements map[string]float64)
	TrackTrace(message string, properties map[string]string, severity Severity)
	Flush()
}

// NullClient drops everything.
type NullClient struct{}

func (NullClient) TrackEvent(string, map[string]string, map[string]float64) {}
func (NullClient) TrackTrace(string, map[string]string, Severity)          {}
func (NullClient) Flush()                                                  {}

// LogClient writes telemetry as structured log entries.
type LogClient struct {
	logger *zap.Logger
}

func NewLogClient(logger *zap.Logger) *LogClient {
	return &LogClient{logger: logger.Named("telemetry")}
}

func (c *LogClient) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	c.logger.Info("event",
		zap.String("name", name),
		zap.Any("properties", properties),
		zap.Any("measurements", measurements),
	)
}

func (c *LogClient) TrackTrace(message string, properties map[string]string, severity Severity) {
	fields := []zap.Field{zap.String("message", message), zap.Any("properties", properties)}
	switch {
	case severity >= Error:
		c.logger.Error("trace", fields...)
	case severity == Warning:
		c.logger.Warn("trace", fields...)
	case severity == Verbose:
		c.logger.Debug("trace", fields...)
	default:
		c.logger.Info("trace", fields...)
	}
}

func (c *LogClient) Flush() {
	_ = c.logger.Sync()
}
