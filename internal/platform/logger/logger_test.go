package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	testCases := []struct {
		name        string
		level       string
		expectDebug bool
		expectInfo  bool
	}{
		{"debug level passes debug", "debug", true, true},
		{"info level drops debug", "info", false, true},
		{"empty level defaults to info", "", false, true},
		{"unknown level falls back to info", "loudest", false, true},
		{"warn level drops info", "warn", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &TestLogBuffer{}
			log, err := Setup(Config{Level: tc.level, Output: buf})
			require.NoError(t, err)
			require.NotNil(t, log)

			log.Debug("debug message")
			log.Info("info message")

			out := buf.String()
			assert.Equal(t, tc.expectDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.expectInfo, strings.Contains(out, "info message"))
		})
	}
}

func TestSetupEmitsJSON(t *testing.T) {
	buf := &TestLogBuffer{}
	log, err := Setup(Config{Level: "info", Output: buf})
	require.NoError(t, err)

	log.Info("something happened", slog.String("concept_id", "abc"))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "something happened", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["concept_id"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestWithLoggerAndFromContext(t *testing.T) {
	buf, testLogger := SetupTestLogger(t)

	ctx := WithLogger(context.Background(), testLogger)
	got := FromContext(ctx)
	require.Same(t, testLogger, got)

	got.Info("from context")
	assert.Contains(t, buf.String(), "from context")

	// Without a logger in context, FromContext falls back to the default.
	fallback := FromContext(context.Background())
	assert.NotNil(t, fallback)
}

func TestFromContextOrDefault(t *testing.T) {
	_, testLogger := SetupTestLogger(t)
	def := slog.Default().With(slog.String("component", "test"))

	// Context logger wins when present.
	ctx := WithLogger(context.Background(), testLogger)
	assert.Same(t, testLogger, FromContextOrDefault(ctx, def))

	// Provided default wins over the global default.
	assert.Same(t, def, FromContextOrDefault(context.Background(), def))

	// Nil default falls back to the global default.
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}
