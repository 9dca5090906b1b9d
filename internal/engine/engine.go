package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/ast"
	"github.com/oxhq/blueprint-ls/internal/cst"
	"github.com/oxhq/blueprint-ls/internal/graph"
	"github.com/oxhq/blueprint-ls/internal/index"
	"github.com/oxhq/blueprint-ls/internal/status"
	"github.com/oxhq/blueprint-ls/internal/symtab"
	"github.com/oxhq/blueprint-ls/internal/tickets"
)

// DebounceInterval is the recomputation debounce window (spec.md §5).
const DebounceInterval = 100 * time.Millisecond

// Engine is the single-threaded owner of workspace state. Every mutating
// method must be called from one goroutine (the document-event loop in
// cmd/blueprintls); reads of the returned Snapshot are safe to share
// since Snapshot is never mutated after rebuild returns it.
type Engine struct {
	mu sync.Mutex // guards files/ticketFiles/version/snapshot/timer

	files       map[string]*fileRecord
	ticketFiles map[string]*tickets.File
	ticketErrs  map[string][]tickets.ValidationError
	ticketRaw   map[string][]byte

	version  int
	snapshot *Snapshot

	debounce    time.Duration
	pendingTime *time.Timer
	onReady     func(*Snapshot) // fires once a debounced recompute lands

	debugLog func(format string, args ...any)
}

// Option configures a new Engine.
type Option func(*Engine)

// WithDebounce overrides the default debounce window (tests use 0).
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithDebugLog installs a debug sink, off by default, matching the
// teacher's debugLog field on StdioServer gated by trace.server.
func WithDebugLog(fn func(format string, args ...any)) Option {
	return func(e *Engine) { e.debugLog = fn }
}

// WithOnReady installs a callback fired after each debounced recompute.
func WithOnReady(fn func(*Snapshot)) Option {
	return func(e *Engine) { e.onReady = fn }
}

// New returns an Engine with an empty, version-0 snapshot.
func New(opts ...Option) *Engine {
	e := &Engine{
		files:       map[string]*fileRecord{},
		ticketFiles: map[string]*tickets.File{},
		ticketErrs:  map[string][]tickets.ValidationError{},
		ticketRaw:   map[string][]byte{},
		debounce:    DebounceInterval,
		debugLog:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snapshot = e.rebuild()
	return e
}

func (e *Engine) log(format string, args ...any) {
	if e.debugLog != nil {
		e.debugLog(format, args...)
	}
}

// Snapshot returns the current immutable snapshot.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// UpdateDocument parses text and schedules a debounced recompute
// (spec.md §5: version bump, 100ms debounce, lazy recomputation).
func (e *Engine) UpdateDocument(uri, text string) {
	root := cst.Parse(uri, text)
	doc := ast.Build(uri, root)
	tbl := symtab.New(uri, doc)

	e.mu.Lock()
	e.files[uri] = &fileRecord{uri: uri, text: text, doc: doc, tbl: tbl}
	e.mu.Unlock()
	e.scheduleRecompute()
}

// RemoveDocument drops a closed/deleted file from the workspace.
func (e *Engine) RemoveDocument(uri string) {
	e.mu.Lock()
	delete(e.files, uri)
	e.mu.Unlock()
	e.scheduleRecompute()
}

// UpdateTicketFile ingests or replaces a .tickets.json file's contents.
func (e *Engine) UpdateTicketFile(uri string, data []byte) {
	f, errs := tickets.Parse(data)
	e.mu.Lock()
	e.ticketFiles[uri] = f
	e.ticketErrs[uri] = errs
	e.ticketRaw[uri] = data
	e.mu.Unlock()
	e.scheduleRecompute()
}

// RemoveTicketFile drops a ticket file from the workspace.
func (e *Engine) RemoveTicketFile(uri string) {
	e.mu.Lock()
	delete(e.ticketFiles, uri)
	delete(e.ticketErrs, uri)
	delete(e.ticketRaw, uri)
	e.mu.Unlock()
	e.scheduleRecompute()
}

// scheduleRecompute bumps the version and (re)arms the debounce timer.
// Cooperative cancellation: each call resets any in-flight timer, so a
// burst of edits collapses into a single recompute (spec.md §5).
func (e *Engine) scheduleRecompute() {
	e.mu.Lock()
	e.version++
	v := e.version
	if e.pendingTime != nil {
		e.pendingTime.Stop()
	}
	if e.debounce <= 0 {
		e.mu.Unlock()
		e.recomputeIfCurrent(v)
		return
	}
	e.pendingTime = time.AfterFunc(e.debounce, func() {
		e.recomputeIfCurrent(v)
	})
	e.mu.Unlock()
}

func (e *Engine) recomputeIfCurrent(v int) {
	e.mu.Lock()
	if v != e.version {
		// superseded by a later edit; skip this stale recompute.
		e.mu.Unlock()
		return
	}
	snap := e.rebuild()
	e.snapshot = snap
	onReady := e.onReady
	e.mu.Unlock()

	e.log("recomputed snapshot at version %d", snap.Version)
	if onReady != nil {
		onReady(snap)
	}
}

// rebuild recomputes the index/graph/status analyzer from scratch. Must
// be called with e.mu held.
func (e *Engine) rebuild() *Snapshot {
	ix := index.New()
	var uris []string
	parseErrors := map[string][]core.Location{}
	extraDescLocs := map[string][]core.Location{}
	misplacedDescLocs := map[string][]core.Location{}
	for uri, fr := range e.files {
		ix.AddFile(uri, fr.tbl)
		uris = append(uris, uri)
		parseErrors[uri] = fr.doc.Errors
		extraDescLocs[uri] = descriptionLocations(fr.doc.ExtraDescriptions)
		misplacedDescLocs[uri] = descriptionLocations(fr.doc.MisplacedDescriptions)
	}
	sort.Strings(uris)
	g := graph.Build(ix, uris)

	byRef := status.TicketsByRef{}
	ticketFiles := map[string]*tickets.File{}
	ticketErrs := map[string][]tickets.ValidationError{}
	ticketRaw := map[string][]byte{}
	for uri, f := range e.ticketFiles {
		ticketFiles[uri] = f
		ticketErrs[uri] = e.ticketErrs[uri]
		ticketRaw[uri] = e.ticketRaw[uri]
		for _, t := range f.Tickets {
			byRef[t.Ref] = append(byRef[t.Ref], t)
		}
	}

	snap := &Snapshot{
		Version:                  e.version,
		Index:                    ix,
		Graph:                    g,
		ParseErrors:              parseErrors,
		ExtraDescriptionLocs:     extraDescLocs,
		MisplacedDescriptionLocs: misplacedDescLocs,
		TicketsByFile:            ticketFiles,
		TicketErrors:             ticketErrs,
		TicketRaw:                ticketRaw,
		ticketsByRef:             byRef,
	}
	constraintNamesOf := func(p string) []string {
		syms, _ := ix.Lookup(p)
		if len(syms) == 0 {
			return nil
		}
		var names []string
		for _, c := range syms[0].Children {
			if c.Kind == core.KindConstraint {
				names = append(names, c.Name)
			}
		}
		return names
	}
	snap.analyzer = status.NewAnalyzer(g, func(p string) core.DerivedStatus {
		return status.DerivedStatus(byRef[p], constraintNamesOf(p))
	})
	return snap
}

// descriptionLocations extracts each description's location, in order.
func descriptionLocations(descs []*ast.Description) []core.Location {
	if len(descs) == 0 {
		return nil
	}
	out := make([]core.Location, len(descs))
	for i, d := range descs {
		out[i] = d.Location
	}
	return out
}
