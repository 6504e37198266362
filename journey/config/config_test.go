package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

func TestParseEnvWorkerDefaults(t *testing.T) {
	var cfg Worker
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, "localhost:7233", cfg.TemporalHost)
	assert.Equal(t, "journey-task-queue", cfg.TaskQueue)
	assert.Equal(t, "journey.db", cfg.StoragePath)
	assert.Equal(t, ":9464", cfg.MetricsAddr)
	assert.Equal(t, 100, cfg.MaxConcurrent)
}

func TestParseEnvStarterOverrides(t *testing.T) {
	t.Setenv("JOURNEY_STRICT_NAVIGATION", "true")
	t.Setenv("JOURNEY_VIEWER_NAME", "Aria")
	t.Setenv("JOURNEY_DELAY_PAYMENT", "250ms")

	var cfg Starter
	require.NoError(t, ParseEnv(&cfg))

	assert.True(t, cfg.StrictNavigation)
	assert.Equal(t, "Aria", cfg.ViewerName)
	assert.Equal(t, 500, cfg.MaxActionsPerRun)

	timings := cfg.Delays.Timings()
	want := types.DefaultTimings()
	want.Payment = 250 * time.Millisecond
	assert.Equal(t, want, timings)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("JOURNEY_MAX_ACTIONS_PER_RUN", "lots")

	var cfg Starter
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestParseEnvCLI(t *testing.T) {
	t.Setenv("JOURNEY_PROFILE", "frodo")
	t.Setenv("JOURNEY_DELAY_BOOK_OPEN", "1ms")

	var cfg CLI
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, "journey.db", cfg.StoragePath)
	assert.Equal(t, "frodo", cfg.Profile)
	assert.False(t, cfg.StrictNavigation)
	assert.Equal(t, time.Millisecond, cfg.Delays.Timings().BookOpen)
}
