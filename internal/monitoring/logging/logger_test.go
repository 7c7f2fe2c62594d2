package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewFromCore(core), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Debug("dbg")
	log.Info("inf")
	log.Warn("wrn")
	log.Error("err")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestZapLogger_FieldTranslation(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Info("fields",
		String("s", "v"),
		Int("i", 7),
		Int64("i64", 9),
		Float64("f", 1.5),
		Bool("b", true),
		Duration("d", time.Second),
		Err(errors.New("boom")),
		Any("a", []int{1, 2}),
	)

	require.Len(t, logs.All(), 1)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "v", fields["s"])
	assert.Equal(t, int64(7), fields["i"])
	assert.Equal(t, int64(9), fields["i64"])
	assert.Equal(t, 1.5, fields["f"])
	assert.Equal(t, true, fields["b"])
	assert.Equal(t, "boom", fields["error"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	parent, logs := newObserved(zapcore.InfoLevel)
	child := parent.With(String("component", "engine"))

	parent.Info("from parent")
	child.Info("from child")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "component")
	assert.Equal(t, "engine", entries[1].ContextMap()["component"])
}

func TestNamed(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)
	log.Named("console").Named("engine").Info("hello")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "console.engine", logs.All()[0].LoggerName)
}

func TestNew_Defaults(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewNop_IsSilentAndChainable(t *testing.T) {
	log := NewNop()
	log.With(String("k", "v")).Named("x").Info("discarded")
}
