package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zap.InfoLevel, parseLevel("chatty"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, "info", "")
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, "debug", "debug:vm info:*")
	require.NoError(t, err)
	l.Named("vm").Debug("trace")
	l.Named("api").Debug("noise")
	l.Named("api").Info("served")
	assert.Contains(t, buf.String(), "trace")
	assert.NotContains(t, buf.String(), "noise")
	assert.Contains(t, buf.String(), "served")

	_, err = NewLogger(&buf, "debug", "bogus:vm")
	assert.Error(t, err)
}

func TestNewLoggerFilterOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, "INFO", "debug+:vm info+:*")
	require.NoError(t, err)
	l.Named("vm").Debug("step")
	l.Named("api").Debug("noise")
	l.Named("api").Warn("slow")
	assert.Contains(t, buf.String(), "step")
	assert.NotContains(t, buf.String(), "noise")
	assert.Contains(t, buf.String(), "slow")
}
