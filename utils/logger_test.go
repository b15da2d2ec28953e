package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLogLevel(t *testing.T) {
	logger := GetLogger()
	prev := logLevel.Level()
	t.Cleanup(func() { logLevel.SetLevel(prev) })

	assert.True(t, SetLogLevel("warn"))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	assert.False(t, SetLogLevel("loud"))
	assert.Equal(t, zapcore.WarnLevel, logLevel.Level())
}
