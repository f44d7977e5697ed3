package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_WithFieldsAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"session_id": "s-1"})

	log.WithError(errors.New("boom")).Error("turn failed", map[string]interface{}{"mode": "DISCOVERY"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "turn failed", entries[0].Message)
		assert.Equal(t, "s-1", ctx["session_id"])
		assert.Equal(t, "DISCOVERY", ctx["mode"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	l := New("warn", "console")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l = New("debug", "json")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Info("ignored", nil)
		log.With(map[string]interface{}{"k": "v"}).Warn("ignored", nil)
	})
}
