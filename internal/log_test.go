package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerWithKeepsLevel(t *testing.T) {
	l := NewLogger(LogLevelWarn)
	child := l.With("component", "test")
	assert.Equal(t, LogLevelWarn, child.GetLevel())

	// Must not panic for any level.
	child.Error("e %d", 1)
	child.Warn("w")
	child.Info("i")
	child.Debug("d")
	child.Trace("t")

	nop := NewNopLogger()
	nop.Info("discarded %s", "message")
}
