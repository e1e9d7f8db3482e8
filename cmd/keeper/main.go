// Package main provides the keeper CLI for manual snapshot management:
// saving a summary on demand and browsing or reloading stored summaries.
package main

import (
	"fmt"
	"log"
	"os"
	"time"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: keeper <save|load|list|sessions> [args...]")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "save":
		os.Exit(runSave(os.Args[2:], os.Stdout, os.Stderr))
	case "load":
		os.Exit(runLoad(os.Args[2:], os.Stdout, os.Stderr))
	case "list":
		os.Exit(runList(os.Args[2:], os.Stdout, os.Stderr))
	case "sessions":
		os.Exit(runSessions(os.Stdout, os.Stderr))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(2)
	}
}

// formatCreatedAt renders an RFC3339 creation time for table output.
func formatCreatedAt(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		if len(createdAt) >= 16 {
			return createdAt[:16]
		}
		if createdAt == "" {
			return "unknown"
		}
		return createdAt
	}
	return t.Format("2006-01-02 15:04")
}

func shortID(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8] + "..."
	}
	return sessionID
}
