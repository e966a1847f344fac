package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestNewSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(LogLevelInfo, "json", &buf)

	l.Debug("dropped")
	With(l, "session", "s1").Info("engine.session.started", "experience", "x1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine.session.started", entry["msg"])
	assert.Equal(t, "s1", entry["session"])
	assert.Equal(t, "x1", entry["experience"])
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapAdapter(zap.New(core))

	With(l, "session", "s1").Warn("sequencer.run.aborted", "index", 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sequencer.run.aborted", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "s1", fields["session"])
	assert.EqualValues(t, 2, fields["index"])
}

func TestNewZap(t *testing.T) {
	l, err := NewZap(ZapConfig{Level: "bogus", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

type recorder struct{ args [][]any }

func (r *recorder) Debug(_ string, args ...any) { r.args = append(r.args, args) }
func (r *recorder) Info(_ string, args ...any)  { r.args = append(r.args, args) }
func (r *recorder) Warn(_ string, args ...any)  { r.args = append(r.args, args) }
func (r *recorder) Error(_ string, args ...any) { r.args = append(r.args, args) }

func TestWith_WrapsForeignLoggers(t *testing.T) {
	rec := &recorder{}

	With(rec, "a", 1).Error("x", "b", 2)

	require.Len(t, rec.args, 1)
	assert.Equal(t, []any{"a", 1, "b", 2}, rec.args[0])
	assert.Equal(t, NoOpLogger{}, With(NoOpLogger{}, "a", 1))
}
