package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wordwell/wordwell-api/internal/config"
)

func TestSetup(t *testing.T) {
	cases := []struct {
		name   string
		level  string
		format string
	}{
		{"json debug", "debug", "json"},
		{"json info", "info", "json"},
		{"text warn", "warn", "text"},
		{"invalid level falls back", "verbose", "json"},
		{"unknown format falls back to json", "info", "xml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{
				LogLevel:  tc.level,
				LogFormat: tc.format,
			})
			assert.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Without a stored logger the default is returned.
	assert.Equal(t, slog.Default(), FromContext(ctx))

	stored := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = WithLogger(ctx, stored)
	assert.Equal(t, stored, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	ctx := context.Background()
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	assert.Equal(t, fallback, FromContextOrDefault(ctx, fallback))
	assert.Equal(t, slog.Default(), FromContextOrDefault(ctx, nil))

	stored := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = WithLogger(ctx, stored)
	assert.Equal(t, stored, FromContextOrDefault(ctx, fallback))
}
