package telemetry

import (
	"context"
	"sync"
	"time"

	"flybot/models"

	"go.uber.org/zap"
)

// Writer persists a batch of telemetry items.
type Writer interface {
	InsertMany(ctx context.Context, items []models.TelemetryItem) error
}

// BufferedClient queues items and hands them to a Writer once queueSize
// items are pending or on Flush.
type BufferedClient struct {
	writer    Writer
	queueSize int
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []models.TelemetryItem
}

// NewBufferedClient returns a client flushing every queueSize items.
func NewBufferedClient(writer Writer, queueSize int, logger *zap.Logger) *BufferedClient {
	if queueSize <= 0 {
		queueSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BufferedClient{
		writer:    writer,
		queueSize: queueSize,
		timeout:   5 * time.Second,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *BufferedClient) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	c.enqueue(models.TelemetryItem{
		Kind:         "event",
		Name:         name,
		Properties:   properties,
		Measurements: measurements,
	})
}

func (c *BufferedClient) TrackTrace(message string, properties map[string]string, severity Severity) {
	c.enqueue(models.TelemetryItem{
		Kind:       "trace",
		Name:       message,
		Severity:   severity.String(),
		Properties: properties,
	})
}

func (c *BufferedClient) enqueue(item models.TelemetryItem) {
	item.Timestamp = c.now().UTC()

	c.mu.Lock()
	c.pending = append(c.pending, item)
	var batch []models.TelemetryItem
	if len(c.pending) >= c.queueSize {
		batch = c.pending
		c.pending = nil
	}
	c.mu.Unlock()

	if batch != nil {
		c.write(batch)
	}
}

// Flush writes whatever is queued.
func (c *BufferedClient) Flush() {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) > 0 {
		c.write(batch)
	}
}

func (c *BufferedClient) write(batch []models.TelemetryItem) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.writer.InsertMany(ctx, batch); err != nil {
		c.logger.Error("failed to write telemetry batch", zap.Int("items", len(batch)), zap.Error(err))
	}
}
