package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRunHealthChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
		"mongo": func(context.Context) error { return errors.New("down") },
	})

	assert.Equal(t, map[string]bool{"redis": true, "mongo": false}, status.Services)
	assert.False(t, status.CheckedAt.IsZero())
	assert.Equal(t, status, GetHealthStatus())
}

func TestRunHealthChecks_TimesOutSlowChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	assert.False(t, status.Services["slow"])
}

func TestStartHealthMonitor_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 1)
	StartHealthMonitor(ctx, time.Hour, map[string]HealthCheck{
		"redis": func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("health check did not run")
	}
	cancel()
}
