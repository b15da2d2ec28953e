package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, "luis", cfg.Recognizer)
	assert.Equal(t, "memory", cfg.StateStore)
	assert.Equal(t, 10, cfg.TelemetryQueueSize)
	assert.Equal(t, "https://login.botframework.com/v1/.well-known/keys", cfg.BotOpenIDKeysURL)
	assert.Equal(t, time.Hour, cfg.StateTTL())
	assert.False(t, cfg.BookingQueueEnabled)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \"3978\"\nRECOGNIZER: gemini\nSTATE_TTL_MINUTES: 5\n"), 0o600))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, "3978", cfg.AppPort)
	assert.Equal(t, "gemini", cfg.Recognizer)
	assert.Equal(t, 5*time.Minute, cfg.StateTTL())
	assert.Equal(t, "flybot", cfg.DatabaseName)
}

func TestIsProduction(t *testing.T) {
	prev := Get()
	t.Cleanup(func() { Set(prev) })

	Set(Config{Env: "production"})
	assert.True(t, IsProduction())
	Set(Config{Env: "development"})
	assert.False(t, IsProduction())
}

func TestGetDuringReload(t *testing.T) {
	prev := Get()
	t.Cleanup(func() { Set(prev) })

	Set(Config{LogLevel: "info"})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			Set(Config{LogLevel: "debug", RedisAddr: "localhost:6379"})
		}
	}()
	for i := 0; i < 1000; i++ {
		cfg := Get()
		assert.Contains(t, []string{"info", "debug"}, cfg.LogLevel)
	}
	<-done
	assert.Equal(t, "debug", Get().LogLevel)

	cfg := Get()
	cfg.LogLevel = "error"
	assert.Equal(t, "debug", Get().LogLevel, "Get returns a copy")
}
