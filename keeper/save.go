package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SaveRequest is one write-path invocation: summarize the transcript and
// persist a snapshot for the session.
type SaveRequest struct {
	SessionID          string
	TranscriptPath     string
	Cwd                string
	Trigger            Trigger
	CustomInstructions string

	// Now stamps the snapshot; zero means the current time.
	Now time.Time
}

// SaveResult reports what a successful save produced.
type SaveResult struct {
	SummaryPath string
	Metadata    Metadata
}

// Save runs the full write path: parse, extract, generate, write the
// snapshot, repoint latest, register in the index. The index entry is
// registered only after the snapshot write succeeded, so the index never
// references a snapshot that is not on disk. An empty transcript is a silent
// no-op (nil result, nil error).
func Save(ctx context.Context, req SaveRequest, cfg Config, logf func(format string, args ...any)) (*SaveResult, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if req.SessionID == "" {
		return nil, errors.New("missing session id")
	}
	if req.TranscriptPath == "" {
		return nil, errors.New("missing transcript path")
	}
	if req.Cwd == "" {
		return nil, errors.New("missing project path")
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	messages, err := ReadTranscript(req.TranscriptPath, logf)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		logf("no messages in transcript, skipping summary")
		return nil, nil
	}
	logf("parsed %d messages from transcript", len(messages))

	bundle := Extract(messages)
	info := SessionInfo{
		SessionID:          req.SessionID,
		Trigger:            req.Trigger,
		Cwd:                req.Cwd,
		CreatedAt:          req.Now,
		CustomInstructions: req.CustomInstructions,
	}

	summary, meta := NewGenerator(cfg, logf).Generate(ctx, bundle, info)

	store := NewStore(req.Cwd)
	relPath, err := store.WriteSnapshot(meta.SessionID, meta.Timestamp, summary, meta)
	if err != nil {
		return nil, err
	}

	// The compressed transcript copy is a supplement; its failure must not
	// undo an otherwise complete snapshot.
	if _, err := store.ArchiveTranscript(meta.SessionID, meta.Timestamp, req.TranscriptPath); err != nil {
		logf("transcript archive failed: %v", err)
	}

	if err := store.UpdateLatestPointer(meta.SessionID, meta.Timestamp); err != nil {
		return nil, err
	}

	index := NewIndexFile(store, cfg.RetentionCap)
	if err := index.Register(EntryFromMetadata(meta, relPath)); err != nil {
		return nil, fmt.Errorf("register snapshot: %w", err)
	}

	return &SaveResult{SummaryPath: relPath, Metadata: meta}, nil
}
