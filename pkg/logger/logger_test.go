package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestSimpleLoggerFormatsKeyValues(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerWithLevel(LevelInfo, &out, &errOut)

	l.Info("turn processed", "conversation_id", "c1", "replies", 2)
	l.Error("dispatch failed", "intent")

	assert.Contains(t, out.String(), "INFO: turn processed conversation_id=c1 replies=2")
	assert.Contains(t, errOut.String(), "ERROR: dispatch failed intent=<missing>")
}

func TestSimpleLoggerRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerWithLevel(LevelWarn, &out, &out)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "WARN: shown")
}
