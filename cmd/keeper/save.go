package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/theimaginaryfoundation/context-keeper/keeper"
)

// runSave triggers the write path manually, outside the host's compaction
// hook. The transcript path is required; a session id is generated when the
// caller has none.
func runSave(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(stderr)

	transcript := fs.String("transcript", "", "Path to the JSONL transcript to summarize (required)")
	session := fs.String("session", "", "Session id (default: generated)")
	project := fs.String("project", "", "Project path (default: current directory)")
	instructions := fs.String("instructions", "", "Additional instructions for the summarizer")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *transcript == "" {
		fmt.Fprintln(stderr, "missing -transcript")
		return 2
	}
	if *project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(stderr, "cannot determine project path: %v\n", err)
			return 1
		}
		*project = cwd
	}
	if *session == "" {
		*session = uuid.NewString()
		fmt.Fprintf(stdout, "generated session id: %s\n", *session)
	}

	cfg, err := keeper.LoadConfig(*project)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
	}

	info := func(format string, args ...any) {
		fmt.Fprintf(stdout, format+"\n", args...)
	}

	result, err := keeper.Save(context.Background(), keeper.SaveRequest{
		SessionID:          *session,
		TranscriptPath:     *transcript,
		Cwd:                *project,
		Trigger:            keeper.TriggerManual,
		CustomInstructions: *instructions,
	}, cfg, info)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if result == nil {
		fmt.Fprintln(stdout, "transcript is empty, nothing saved")
		return 0
	}

	fmt.Fprintf(stdout, "saved %s\n", result.SummaryPath)
	if len(result.Metadata.Topics) > 0 {
		fmt.Fprintf(stdout, "topics: %s\n", strings.Join(result.Metadata.Topics, ", "))
	}
	return 0
}
