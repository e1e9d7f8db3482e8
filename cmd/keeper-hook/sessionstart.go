package main

import (
	"fmt"
	"io"
	"time"

	"github.com/theimaginaryfoundation/context-keeper/keeper"
)

// runSessionStart is the read path: print the latest eligible summary as a
// delimited context block for the host to inject. With nothing eligible it
// writes nothing and exits 0, so resumes stay silent.
func runSessionStart(stdin io.Reader, stdout, stderr io.Writer) int {
	fail := func(format string, args ...any) int {
		fmt.Fprintf(stderr, "[session-start error] "+format+"\n", args...)
		return 1
	}

	in, err := readHookInput(stdin)
	if err != nil {
		return fail("failed to parse hook input: %v", err)
	}

	// A cleared session starts from scratch on purpose.
	if in.EventType == "clear" {
		return 0
	}
	if in.Cwd == "" {
		return 0
	}

	cfg, err := keeper.LoadConfig(in.Cwd)
	if err != nil {
		fmt.Fprintf(stderr, "[session-start error] %v\n", err)
	}

	store := keeper.NewStore(in.Cwd)
	index := keeper.NewIndexFile(store, cfg.RetentionCap)
	retriever := keeper.NewRetriever(store, index)

	loaded, err := retriever.Latest(in.SessionID, cfg.FreshnessWindow(), time.Now())
	if err != nil {
		return fail("%v", err)
	}
	if loaded == nil {
		return 0
	}

	fmt.Fprintln(stdout, keeper.FormatContext(*loaded, in.EventType))

	if err := index.MarkLoaded(loaded.Entry.SessionID); err != nil {
		fmt.Fprintf(stderr, "[session-start error] mark loaded: %v\n", err)
	}
	return 0
}
