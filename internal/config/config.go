// Package config holds the server's configuration: a plain struct with
// enumerated fields and explicit defaults, loaded from the initialize
// request payload and then overridden by the process environment. There
// is no dynamic/global config object — Load returns a value and callers
// thread it explicitly.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// TraceLevel is the trace.server setting (spec.md §6).
type TraceLevel string

const (
	TraceOff      TraceLevel = "off"
	TraceMessages TraceLevel = "messages"
	TraceVerbose  TraceLevel = "verbose"
)

// Config is the set of options the core recognizes. Editor-side options
// (hoverDelay, gotoModifier, showProgressInGutter, showProgressHighlighting,
// highlighting.*) are consumed by the client only and have no server-side
// representation.
type Config struct {
	// TicketsPath is the workspace-relative directory .tickets.json
	// files live under (spec.md §6, default ".blueprint/tickets").
	TicketsPath string

	// Trace controls how much protocol traffic the server logs.
	Trace TraceLevel

	// TelemetryDSN is the audit-log database DSN: a local file path or
	// a libsql:// / https:// Turso URL. Empty disables telemetry.
	TelemetryDSN string

	// Debug enables verbose gorm logging on the telemetry connection.
	Debug bool
}

// Default returns a Config with the documented fallback values.
func Default() Config {
	return Config{
		TicketsPath:  ".blueprint/tickets",
		Trace:        TraceOff,
		TelemetryDSN: "",
		Debug:        false,
	}
}

// InitializeOptions mirrors the subset of an LSP initializationOptions
// payload the core reads; fields left zero fall through to Default()
// and then to the environment.
type InitializeOptions struct {
	TicketsPath string
	TraceServer string
}

// Load builds a Config starting from Default(), applying opts from the
// initialize request, then process environment overrides (grounded on
// db/sqlite_integration_test.go's godotenv.Load() pattern) — environment
// wins, since it reflects the operator's deployment, not the editor's
// stored settings.
func Load(opts InitializeOptions) Config {
	_ = godotenv.Load()

	cfg := Default()

	if opts.TicketsPath != "" {
		cfg.TicketsPath = opts.TicketsPath
	}
	if opts.TraceServer != "" {
		cfg.Trace = TraceLevel(opts.TraceServer)
	}

	if v := os.Getenv("BLUEPRINTLS_TICKETS_PATH"); v != "" {
		cfg.TicketsPath = v
	}
	if v := os.Getenv("BLUEPRINTLS_TRACE_SERVER"); v != "" {
		cfg.Trace = TraceLevel(v)
	}
	if v := os.Getenv("BLUEPRINTLS_TELEMETRY_DSN"); v != "" {
		cfg.TelemetryDSN = v
	}
	if v := os.Getenv("BLUEPRINTLS_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}

	return cfg
}
