// Command blueprintlsctl is an offline CLI over the same engine the
// editor-facing server uses: point it at a workspace and it prints
// diagnostics, the dependency graph, or per-requirement status without
// ever starting a document-event loop.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/config"
	"github.com/oxhq/blueprint-ls/internal/engine"
	"github.com/oxhq/blueprint-ls/internal/query"
	"github.com/oxhq/blueprint-ls/internal/workspace"
)

var ticketsPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "blueprintlsctl",
		Short: "Offline Blueprint workspace inspector",
		Long:  "Load a Blueprint workspace and report diagnostics, dependency graph edges, or requirement status without an editor attached.",
	}
	rootCmd.PersistentFlags().StringVar(&ticketsPath, "tickets-path", "", "workspace-relative ticket directory (default .blueprint/tickets)")

	checkCmd := &cobra.Command{
		Use:   "check <workspace>",
		Short: "Print diagnostics for every file in the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			return runCheck(snap)
		},
	}

	graphCmd := &cobra.Command{
		Use:   "graph <workspace>",
		Short: "Print dependency edges and cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			return runGraph(snap)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <workspace>",
		Short: "Print derived and blocking status per requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			return runStatus(snap)
		},
	}

	rootCmd.AddCommand(checkCmd, graphCmd, statusCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadSnapshot(root string) (*engine.Snapshot, error) {
	cfg := config.Load(config.InitializeOptions{TicketsPath: ticketsPath})
	eng := engine.New(engine.WithDebounce(0))

	w := workspace.New()
	for f := range w.Walk(context.Background(), root, cfg.TicketsPath) {
		if f.Err != nil {
			return nil, f.Err
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		switch f.Kind {
		case workspace.KindBlueprint:
			eng.UpdateDocument(f.Path, string(data))
		case workspace.KindTickets:
			eng.UpdateTicketFile(f.Path, data)
		}
	}
	return eng.Snapshot(), nil
}

func runCheck(snap *engine.Snapshot) error {
	total := 0
	for _, uri := range snap.Index.Files() {
		diags := query.Diagnostics(snap, uri)
		for _, d := range diags {
			total++
			fmt.Printf("%s %s [%s] %s\n", severityLabel(d.Severity), d.Location, d.Source, d.Message)
		}
	}
	st := snap.Stats()
	fmt.Printf("\n%d file(s), %d module(s), %d feature(s), %d requirement(s), %d constraint(s), %d diagnostic(s)\n",
		st.Files, st.Modules, st.Features, st.Requirements, st.Constraints, total)
	return nil
}

func runGraph(snap *engine.Snapshot) error {
	for _, uri := range snap.Index.Files() {
		entry := snap.Index.File(uri)
		if entry == nil {
			continue
		}
		for _, e := range entry.Edges {
			status := "resolved"
			if !e.Resolved {
				status = "unresolved"
			}
			fmt.Printf("%s -> %s (%s)\n", e.From, e.To, status)
		}
	}
	cycles := snap.Graph.Cycles()
	if len(cycles) == 0 {
		fmt.Println("\nno cycles")
		return nil
	}
	fmt.Printf("\n%d cycle(s):\n", len(cycles))
	for _, c := range cycles {
		fmt.Printf("  %v\n", c.Nodes)
	}
	return nil
}

func runStatus(snap *engine.Snapshot) error {
	rows := query.RequirementStatuses(snap, "")
	for _, r := range rows {
		fmt.Printf("%-40s derived=%-12s blocking=%s\n", r.Path, r.Derived, r.Blocking.Status)
		if r.Blocking.Status == core.BlockingBlocked && len(r.Blocking.DirectBlockers) > 0 {
			fmt.Printf("  blocked by: %v\n", r.Blocking.DirectBlockers)
		}
	}
	return nil
}

func severityLabel(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warning"
	case core.SeverityInfo:
		return "info"
	case core.SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}
