package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/a2n2k3p4/omise-payments/config"
)

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "warn", Format: "json"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("console", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "************4242", MaskCard("4242424242424242"))
	assert.Equal(t, "************4242", MaskCard("4242 4242 4242 4242"))
	assert.Equal(t, "***", MaskCard("123"))
	assert.Equal(t, "", MaskCard(""))

	f := Card("4111111111111111")
	assert.Equal(t, "card", f.Key)
	assert.Equal(t, "************1111", f.String)
}
