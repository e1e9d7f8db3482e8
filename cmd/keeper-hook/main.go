// Package main provides the keeper-hook binary the host runs around its
// session lifecycle: `precompact` persists a summary snapshot before context
// compaction, `session-start` re-injects the latest eligible summary on
// resume. Both read the host's JSON payload on stdin and must never block
// the session: failures log to stderr and exit non-zero, which the host
// treats as non-blocking.
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: keeper-hook <precompact|session-start>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "precompact":
		os.Exit(runPrecompact(os.Stdin, os.Stdout, os.Stderr))
	case "session-start":
		os.Exit(runSessionStart(os.Stdin, os.Stdout, os.Stderr))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
