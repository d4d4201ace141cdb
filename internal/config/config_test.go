package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "./data/splitledger.db", cfg.Database.Path)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SPLITLEDGER_SERVER_PORT", "9090")
	t.Setenv("SPLITLEDGER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("SPLITLEDGER_DATABASE_PATH", "/tmp/ledger.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("SPLITLEDGER_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
