package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(name string) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return Logger{logger: slog.New(handler), name: name}, buf
}

func TestLogger_ContextChain(t *testing.T) {
	log, buf := newBufferLogger("readiness")

	log.File("tracker").Function("Refresh").Info("refreshed", "actorID", "a-1")

	out := buf.String()
	assert.Contains(t, out, "component=readiness")
	assert.Contains(t, out, "file=tracker")
	assert.Contains(t, out, "function=Refresh")
	assert.Contains(t, out, "actorID=a-1")
}

func TestLogger_FunctionDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger("app")
	_ = parent.Function("New")

	parent.Info("hello")
	assert.NotContains(t, buf.String(), "function=New")
}

func TestLogger_ErrWrapsCause(t *testing.T) {
	log, buf := newBufferLogger("database")
	cause := errors.New("disk full")

	err := log.Function("Save").Err("failed to save", cause, "id", 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save: disk full", err.Error())
	assert.Contains(t, buf.String(), "error=\"disk full\"")
}

func TestLogger_ErrWithNilCause(t *testing.T) {
	log, _ := newBufferLogger("database")

	err := log.Err("failed to save", nil)
	require.Error(t, err)
	assert.Equal(t, "failed to save", err.Error())
}

func TestLogger_ErrorReturnsMessage(t *testing.T) {
	log, buf := newBufferLogger("database")

	err := log.Error("database path is empty", "dbPath", "")
	assert.EqualError(t, err, "database path is empty")
	assert.Contains(t, buf.String(), "level=ERROR")

	assert.EqualError(t, log.ErrMsg("nil check failed"), "nil check failed")
}

func TestLogger_ZeroValueFallsBackToDefault(t *testing.T) {
	var log Logger
	assert.NotPanics(t, func() { log.Debug("no handler configured") })
}
