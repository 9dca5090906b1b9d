// Command blueprintls is a minimal document-event harness that drives
// internal/engine and internal/query the way an LSP client would, without
// implementing LSP's JSON-RPC framing (out of scope per spec.md §1): it
// reads line-delimited JSON events from stdin and writes line-delimited
// JSON results to stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/oxhq/blueprint-ls/internal/config"
	"github.com/oxhq/blueprint-ls/internal/engine"
	"github.com/oxhq/blueprint-ls/internal/query"
	"github.com/oxhq/blueprint-ls/internal/workspace"
	"github.com/oxhq/blueprint-ls/telemetry"
)

// event is one line of input: a document lifecycle notification or a
// query request, discriminated by Type.
type event struct {
	Type string `json:"type"` // open, change, close, saveTicket, closeTicket, query

	URI  string `json:"uri,omitempty"`
	Text string `json:"text,omitempty"`

	// For "query" events.
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"` // fully-qualified symbol path, for "references"
}

// result is one line of output in response to a "query" event.
type result struct {
	Method string `json:"method"`
	URI    string `json:"uri,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	root := flag.String("root", ".", "workspace root to scan for *.bp and ticket files on startup")
	debug := flag.Bool("debug", false, "enable verbose trace logging to stderr")
	flag.Parse()

	cfg := config.Load(config.InitializeOptions{})
	if *debug {
		cfg.Debug = true
		cfg.Trace = config.TraceVerbose
	}

	var debugLog func(string, ...any)
	if cfg.Trace != config.TraceOff {
		debugLog = func(format string, args ...any) { fmt.Fprintf(os.Stderr, "[blueprintls] "+format+"\n", args...) }
	} else {
		debugLog = func(string, ...any) {}
	}

	var rec *telemetry.Recorder
	if cfg.TelemetryDSN != "" {
		db, err := telemetry.Connect(cfg.TelemetryDSN, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		} else {
			rec, err = telemetry.NewRecorder(db, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
			}
		}
	}
	defer rec.End()

	eng := engine.New(engine.WithDebugLog(debugLog))
	loadWorkspace(eng, *root, cfg.TicketsPath, debugLog)

	if err := run(eng, rec, os.Stdin, os.Stdout, debugLog); err != nil {
		fmt.Fprintf(os.Stderr, "blueprintls: %v\n", err)
		os.Exit(1)
	}
}

func loadWorkspace(eng *engine.Engine, root, ticketsPath string, debugLog func(string, ...any)) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	w := workspace.New()
	for f := range w.Walk(ctx, root, ticketsPath) {
		if f.Err != nil {
			debugLog("scan error for %s: %v", f.Path, f.Err)
			continue
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			debugLog("read error for %s: %v", f.Path, err)
			continue
		}
		switch f.Kind {
		case workspace.KindBlueprint:
			eng.UpdateDocument(f.Path, string(data))
		case workspace.KindTickets:
			eng.UpdateTicketFile(f.Path, data)
		}
	}
}

// run processes line-delimited JSON events from r, writing one JSON
// result line to w per query event, until r is exhausted.
func run(eng *engine.Engine, rec *telemetry.Recorder, r io.Reader, w io.Writer, debugLog func(string, ...any)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			enc.Encode(result{Error: fmt.Sprintf("invalid event: %v", err)})
			continue
		}
		handleEvent(eng, rec, ev, enc, debugLog)
	}
	return scanner.Err()
}

func handleEvent(eng *engine.Engine, rec *telemetry.Recorder, ev event, enc *json.Encoder, debugLog func(string, ...any)) {
	switch ev.Type {
	case "open", "change":
		eng.UpdateDocument(ev.URI, ev.Text)
		debugLog("document updated: %s", ev.URI)
	case "close":
		eng.RemoveDocument(ev.URI)
		debugLog("document closed: %s", ev.URI)
	case "saveTicket":
		eng.UpdateTicketFile(ev.URI, []byte(ev.Text))
		debugLog("ticket file updated: %s", ev.URI)
	case "closeTicket":
		eng.RemoveTicketFile(ev.URI)
		debugLog("ticket file closed: %s", ev.URI)
	case "query":
		runQuery(eng, rec, ev, enc)
	default:
		enc.Encode(result{Error: fmt.Sprintf("unknown event type %q", ev.Type)})
	}
}

func runQuery(eng *engine.Engine, rec *telemetry.Recorder, ev event, enc *json.Encoder) {
	snap := eng.Snapshot()
	res := result{Method: ev.Method, URI: ev.URI}

	switch ev.Method {
	case "documentSymbols":
		res.Data = query.DocumentSymbols(snap, ev.URI)
	case "diagnostics":
		res.Data = query.Diagnostics(snap, ev.URI)
	case "requirementStatuses":
		res.Data = query.RequirementStatuses(snap, ev.URI)
	case "references":
		res.Data = query.References(snap, ev.Path, true, query.AllTicketSpans(snap))
	case "stats":
		res.Data = snap.Stats()
	default:
		res.Error = fmt.Sprintf("unknown query method %q", ev.Method)
	}

	resultCount := 0
	if res.Error == "" {
		resultCount = 1
	}
	rec.RecordQuery(ev.Method, snap.Version, 0, resultCount)
	enc.Encode(res)
}
