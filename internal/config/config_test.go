package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearConfigEnvVars() {
	for _, v := range []string{"BLUEPRINTLS_TICKETS_PATH", "BLUEPRINTLS_TRACE_SERVER", "BLUEPRINTLS_TELEMETRY_DSN", "BLUEPRINTLS_DEBUG"} {
		os.Unsetenv(v)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ".blueprint/tickets", cfg.TicketsPath)
	require.Equal(t, TraceOff, cfg.Trace)
	require.Equal(t, "", cfg.TelemetryDSN)
	require.False(t, cfg.Debug)
}

func TestLoad_DefaultsWhenNothingSet(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	cfg := Load(InitializeOptions{})
	require.Equal(t, Default(), cfg)
}

func TestLoad_InitializeOptionsOverrideDefaults(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	cfg := Load(InitializeOptions{TicketsPath: "tix", TraceServer: "messages"})
	require.Equal(t, "tix", cfg.TicketsPath)
	require.Equal(t, TraceMessages, cfg.Trace)
}

func TestLoad_EnvironmentOverridesInitializeOptions(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("BLUEPRINTLS_TICKETS_PATH", "env-tix")
	os.Setenv("BLUEPRINTLS_TRACE_SERVER", "verbose")
	os.Setenv("BLUEPRINTLS_TELEMETRY_DSN", "/tmp/audit.db")
	os.Setenv("BLUEPRINTLS_DEBUG", "true")

	cfg := Load(InitializeOptions{TicketsPath: "tix", TraceServer: "messages"})
	require.Equal(t, "env-tix", cfg.TicketsPath)
	require.Equal(t, TraceVerbose, cfg.Trace)
	require.Equal(t, "/tmp/audit.db", cfg.TelemetryDSN)
	require.True(t, cfg.Debug)
}

func TestLoad_EmptyEnvironmentValuesDoNotOverride(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("BLUEPRINTLS_TICKETS_PATH", "")

	cfg := Load(InitializeOptions{TicketsPath: "tix"})
	require.Equal(t, "tix", cfg.TicketsPath)
}
