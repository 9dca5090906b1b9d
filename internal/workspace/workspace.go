// Package workspace discovers Blueprint source files and their ticket
// files under a workspace root, using a worker-pool walk in the shape of
// the teacher's FileWalker.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/blueprint-ls/internal/tickets"
)

// Kind distinguishes the two file types a workspace scan discovers.
type Kind int

const (
	KindBlueprint Kind = iota
	KindTickets
)

// Found is one discovered file.
type Found struct {
	Path string // root joined with the file's path under it; absolute only when root is
	Kind Kind
	Err  error
}

// Walker discovers `**/*.bp` files and `**/<ticketsPath>/*.tickets.json`
// files under a root, in parallel.
type Walker struct {
	workers int
}

// New returns a Walker sized like the teacher's FileWalker (2x CPU, I/O
// bound work).
func New() *Walker {
	return &Walker{workers: runtime.NumCPU() * 2}
}

// Walk streams every matching file under root. ticketsPath is the
// workspace-relative ticket directory (spec.md §4.6 default
// ".blueprint/tickets").
func (w *Walker) Walk(ctx context.Context, root, ticketsPath string) <-chan Found {
	if ticketsPath == "" {
		ticketsPath = tickets.DefaultTicketsPath
	}
	results := make(chan Found, 256)
	paths := make(chan string, 256)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go w.worker(ctx, root, ticketsPath, paths, results, &wg)
	}

	go func() {
		defer close(paths)
		w.scan(ctx, root, paths)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (w *Walker) scan(ctx context.Context, dir string, paths chan<- string) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			w.scan(ctx, full, paths)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case paths <- full:
		}
	}
}

func (w *Walker) worker(ctx context.Context, root, ticketsPath string, paths <-chan string, results chan<- Found, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			f, ok := classify(root, ticketsPath, path)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case results <- f:
			}
		}
	}
}

func classify(root, ticketsPath, path string) (Found, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Found{}, false
	}
	rel = filepath.ToSlash(rel)

	if strings.HasSuffix(rel, ".bp") {
		if ok, _ := doublestar.Match("**/*.bp", rel); ok {
			return Found{Path: path, Kind: KindBlueprint}, true
		}
	}
	if strings.HasSuffix(rel, ".tickets.json") {
		pattern := filepath.ToSlash(filepath.Join("**", ticketsPath, "*.tickets.json"))
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return Found{Path: path, Kind: KindTickets}, true
		}
	}
	return Found{}, false
}
