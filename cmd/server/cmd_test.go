package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")

	opts := &options{}
	cmd := newCmd(opts)
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "4000", "--redis", "--log_level", "debug"}))

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	applyOverrides(cfg, opts, cmd.Flags())

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset flags keep config values")
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestApplyOverrides_Env(t *testing.T) {
	t.Setenv("DRAWGUESS_REDIS_ADDR", "redis:6380")
	t.Setenv("AI_API_KEY", "")

	opts := &options{}
	cmd := newCmd(opts)
	require.NoError(t, cmd.Flags().Parse(nil))

	cfg := config.Default()
	applyOverrides(cfg, opts, cmd.Flags())

	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Empty(t, cfg.AI.APIKey)
}
