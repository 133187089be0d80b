package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, time.Hour, cfg.RecurringInterval)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRecurringIntervalDrivesCronSpec(t *testing.T) {
	t.Setenv("RECURRING_INTERVAL", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.RecurringInterval)
	require.Equal(t, "@every 15m0s", fmt.Sprintf("@every %s", cfg.RecurringInterval))
}
