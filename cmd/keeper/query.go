package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theimaginaryfoundation/context-keeper/keeper"
)

func openRetriever(stderr io.Writer) (*keeper.Retriever, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine project path: %w", err)
	}
	cfg, err := keeper.LoadConfig(cwd)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
	}
	store := keeper.NewStore(cwd)
	return keeper.NewRetriever(store, keeper.NewIndexFile(store, cfg.RetentionCap)), nil
}

// runLoad prints the summary matched by a session-id or timestamp prefix,
// defaulting to the most recent snapshot. A miss is reported with the
// identifiers that do exist.
func runLoad(args []string, stdout, stderr io.Writer) int {
	identifier := ""
	if len(args) > 0 {
		identifier = args[0]
	}

	retriever, err := openRetriever(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	result, err := retriever.Find(identifier)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if result.Entry == nil {
		if identifier == "" {
			fmt.Fprintln(stdout, "No context summaries found.")
			return 0
		}
		fmt.Fprintf(stdout, "No context found for %q.\n", identifier)
		if len(result.Candidates) > 0 {
			fmt.Fprintln(stdout, "\nAvailable sessions:")
			for _, id := range result.Candidates {
				fmt.Fprintf(stdout, "  - %s\n", id)
			}
		}
		return 0
	}

	loaded, err := retriever.LoadEntry(*result.Entry)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	fmt.Fprintln(stdout, "## Context Summary Loaded")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "**Session ID:** %s\n", loaded.Entry.SessionID)
	fmt.Fprintf(stdout, "**Created:** %s\n", formatCreatedAt(loaded.Entry.CreatedAt))
	fmt.Fprintf(stdout, "**Trigger:** %s\n", loaded.Entry.Trigger)
	fmt.Fprintf(stdout, "**Messages:** %d\n", loaded.Entry.MessageCount)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "---")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, loaded.Summary)
	return 0
}

// runList shows all stored snapshots, or the snapshot history of sessions
// matching a session-id prefix.
func runList(args []string, stdout, stderr io.Writer) int {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	retriever, err := openRetriever(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	entries, err := retriever.Entries(prefix)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if len(entries) == 0 {
		if prefix != "" {
			fmt.Fprintf(stdout, "No contexts found for session %q.\n", prefix)
		} else {
			fmt.Fprintln(stdout, "No context summaries found yet. The first one is saved on the next compaction.")
		}
		return 0
	}

	if prefix != "" {
		fmt.Fprintf(stdout, "## Context History for Session %s\n\n", entries[0].SessionID)
		for i, e := range entries {
			fmt.Fprintf(stdout, "### Snapshot %d: %s\n", i+1, formatCreatedAt(e.CreatedAt))
			fmt.Fprintf(stdout, "- **Trigger:** %s\n", e.Trigger)
			fmt.Fprintf(stdout, "- **Messages:** %d\n", e.MessageCount)
			fmt.Fprintf(stdout, "- **Summary Path:** %s\n", e.SummaryPath)
			fmt.Fprintln(stdout)
		}
		return 0
	}

	fmt.Fprintln(stdout, "## All Saved Contexts")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "| # | Session ID | Timestamp | Trigger | Messages |")
	fmt.Fprintln(stdout, "|---|------------|-----------|---------|----------|")
	for i, e := range entries {
		fmt.Fprintf(stdout, "| %d | %s | %s | %s | %d |\n",
			i+1, shortID(e.SessionID), formatCreatedAt(e.CreatedAt), e.Trigger, e.MessageCount)
	}
	return 0
}

// runSessions prints the aggregated per-session view.
func runSessions(stdout, stderr io.Writer) int {
	retriever, err := openRetriever(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	rows, err := retriever.Sessions()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No sessions recorded yet. The first context is saved on the next compaction.")
		return 0
	}

	fmt.Fprintln(stdout, "## Stored Sessions")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "| # | Session ID | Snapshots | Latest Activity | Project | Messages |")
	fmt.Fprintln(stdout, "|---|------------|-----------|-----------------|---------|----------|")
	total := 0
	for i, row := range rows {
		project := "-"
		if row.Project != "" {
			project = filepath.Base(row.Project)
		}
		fmt.Fprintf(stdout, "| %d | %s | %d | %s | %s | %d |\n",
			i+1, shortID(row.SessionID), row.SnapshotCount, formatCreatedAt(row.LatestCreatedAt), project, row.TotalMessages)
		total += row.SnapshotCount
	}
	fmt.Fprintf(stdout, "\n**Total:** %d sessions with %d context summaries\n", len(rows), total)
	return 0
}
