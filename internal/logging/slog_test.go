package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogAdapter(t *testing.T) {
	t.Run("with nil logger uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		assert.NotNil(t, adapter)
		assert.NotNil(t, adapter.Logger())
	})

	t.Run("with custom logger", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewJSONHandler(&buf, nil)
		logger := slog.New(handler)

		adapter := NewSlogAdapter(logger)
		assert.NotNil(t, adapter)
		assert.Equal(t, logger, adapter.Logger())
	})
}

func TestSlogAdapterLogging(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	adapter := NewSlogAdapter(slog.New(handler))

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		adapter.Info("info message", "key", "value")
		output := buf.String()
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "key")
		assert.Contains(t, output, "value")
	})

	t.Run("Warn", func(t *testing.T) {
		buf.Reset()
		adapter.Warn("warn message")
		assert.Contains(t, buf.String(), "WARN")
	})

	t.Run("Error", func(t *testing.T) {
		buf.Reset()
		adapter.Error("error message")
		assert.Contains(t, buf.String(), "ERROR")
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewLogger(&buf, slog.LevelWarn)

	adapter.Info("filtered out")
	assert.Empty(t, buf.String())

	adapter.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"DEBUG", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"WARNING", slog.LevelWarn, false},
		{"warn", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"CRITICAL", slog.LevelError, false},
		{"info ", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestAttributeHelpers(t *testing.T) {
	assert.Equal(t, slog.String(KeyCheck, "crd_kserve"), Check("crd_kserve"))
	assert.Equal(t, slog.String(KeySuite, "operators"), Suite("operators"))
	assert.Equal(t, slog.String(KeyProfile, "kserve-basic"), Profile("kserve-basic"))
	assert.Equal(t, slog.String(KeyNamespace, "llm-d"), Namespace("llm-d"))
	assert.Equal(t, slog.String(KeyProvider, "azure"), Provider("azure"))
	assert.Equal(t, slog.String(KeyError, ""), Err(nil))
	assert.Equal(t, assert.AnError.Error(), Err(assert.AnError).Value.String())
}

func TestSlogAdapterImplementsLogger(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
