package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theimaginaryfoundation/context-keeper/keeper"
)

// runPrecompact is the write path: summarize the transcript named in the
// hook payload and persist a snapshot. Exit 0 on success or when there is
// nothing to save; exit 1 on a non-fatal internal failure the host ignores.
func runPrecompact(stdin io.Reader, stdout, stderr io.Writer) int {
	info := func(format string, args ...any) {
		fmt.Fprintf(stdout, "[precompact] "+format+"\n", args...)
	}
	fail := func(format string, args ...any) int {
		fmt.Fprintf(stderr, "[precompact error] "+format+"\n", args...)
		return 1
	}

	in, err := readHookInput(stdin)
	if err != nil {
		return fail("failed to parse hook input: %v", err)
	}
	if in.SessionID == "" {
		return fail("no session id in hook input")
	}
	if in.TranscriptPath == "" {
		return fail("no transcript path in hook input")
	}
	if in.Cwd == "" {
		in.Cwd, _ = os.Getwd()
	}

	trigger := keeper.TriggerAuto
	if strings.EqualFold(in.Trigger, string(keeper.TriggerManual)) {
		trigger = keeper.TriggerManual
	}

	shortID := in.SessionID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	info("processing session %s... (trigger: %s)", shortID, trigger)

	cfg, err := keeper.LoadConfig(in.Cwd)
	if err != nil {
		// A broken config file falls back to defaults rather than losing
		// the snapshot.
		fmt.Fprintf(stderr, "[precompact error] %v\n", err)
	}

	result, err := keeper.Save(context.Background(), keeper.SaveRequest{
		SessionID:          in.SessionID,
		TranscriptPath:     in.TranscriptPath,
		Cwd:                in.Cwd,
		Trigger:            trigger,
		CustomInstructions: in.CustomInstructions,
	}, cfg, info)
	if err != nil {
		return fail("%v", err)
	}
	if result == nil {
		return 0
	}

	info("summary saved: %s", result.SummaryPath)
	info("files modified: %d", len(result.Metadata.FilesModified))
	if len(result.Metadata.Topics) > 0 {
		topics := result.Metadata.Topics
		if len(topics) > 5 {
			topics = topics[:5]
		}
		info("topics: %s", strings.Join(topics, ", "))
	}
	return 0
}
