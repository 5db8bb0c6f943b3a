package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFormatsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core))

	child := l.WithField("match_id", "m1").WithFields(map[string]interface{}{"seat": "A"})
	child.Info("deployed %d pieces", 5)
	l.Warn("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "deployed 5 pieces", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "m1", ctx["match_id"])
	assert.Equal(t, "A", ctx["seat"])
	assert.Empty(t, entries[1].ContextMap())

	assert.Equal(t, map[string]interface{}{"match_id": "m1", "seat": "A"}, child.Fields())
	assert.Empty(t, l.Fields())
}

func TestNew(t *testing.T) {
	l, err := New(true)
	require.NoError(t, err)
	l.Debug("hello %s", "world")
	_ = l.Sync()
}
