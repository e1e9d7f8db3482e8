package keeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSave_FullWritePath(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	transcript := writeTranscript(t, scenarioALines...)
	now := time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)

	// No API key: the deterministic strategy runs.
	result, err := Save(context.Background(), SaveRequest{
		SessionID:      "sess-1",
		TranscriptPath: transcript,
		Cwd:            project,
		Trigger:        TriggerAuto,
		Now:            now,
	}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result == nil {
		t.Fatalf("nil result")
	}
	if result.SummaryPath != "sess-1/20260826_103000/summary.md" {
		t.Fatalf("SummaryPath=%q", result.SummaryPath)
	}

	store := NewStore(project)

	snap, err := store.ReadSnapshot("sess-1", "20260826_103000")
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !strings.Contains(snap.Summary, "src/auth.py") {
		t.Fatalf("summary missing modified file:\n%s", snap.Summary)
	}
	if snap.Metadata.MessageCount != 8 {
		t.Fatalf("MessageCount=%d", snap.Metadata.MessageCount)
	}

	if ts := store.ResolveLatest("sess-1"); ts != "20260826_103000" {
		t.Fatalf("latest=%q", ts)
	}

	idx, err := NewIndexFile(store, 50).Load()
	if err != nil {
		t.Fatalf("Load index: %v", err)
	}
	if len(idx.Summaries) != 1 || idx.Summaries[0].SummaryPath != result.SummaryPath {
		t.Fatalf("index=%+v", idx)
	}

	archive := filepath.Join(store.Root(), "sess-1", "20260826_103000", "transcript.jsonl.zst")
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("missing transcript archive: %v", err)
	}
}

func TestSave_EmptyTranscriptIsNoOp(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	transcript := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(transcript, nil, 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	result, err := Save(context.Background(), SaveRequest{
		SessionID:      "sess-1",
		TranscriptPath: transcript,
		Cwd:            project,
		Trigger:        TriggerAuto,
	}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
	if _, err := os.Stat(SummariesDir(project)); !os.IsNotExist(err) {
		t.Fatalf("no state should be written for an empty transcript")
	}
}

func TestSave_MissingInputs(t *testing.T) {
	t.Parallel()

	project := t.TempDir()

	cases := []SaveRequest{
		{TranscriptPath: "x.jsonl", Cwd: project},
		{SessionID: "sess-1", Cwd: project},
		{SessionID: "sess-1", TranscriptPath: "x.jsonl"},
	}
	for _, req := range cases {
		if _, err := Save(context.Background(), req, DefaultConfig(), nil); err == nil {
			t.Fatalf("expected error for %+v", req)
		}
	}
}

func TestSave_UnreadableTranscriptFailsClean(t *testing.T) {
	t.Parallel()

	project := t.TempDir()

	_, err := Save(context.Background(), SaveRequest{
		SessionID:      "sess-1",
		TranscriptPath: filepath.Join(t.TempDir(), "missing.jsonl"),
		Cwd:            project,
		Trigger:        TriggerAuto,
	}, DefaultConfig(), nil)
	if err == nil {
		t.Fatalf("expected error")
	}

	// Fail clean: no partial state on disk.
	if _, err := os.Stat(SummariesDir(project)); !os.IsNotExist(err) {
		t.Fatalf("no state should be written after a failed read")
	}
}

func TestSave_ScenarioB_TwoEventsSameSession(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	transcript := writeTranscript(t, scenarioALines...)

	t1 := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC)
	for _, now := range []time.Time{t1, t2} {
		if _, err := Save(context.Background(), SaveRequest{
			SessionID:      "sess-1",
			TranscriptPath: transcript,
			Cwd:            project,
			Trigger:        TriggerAuto,
			Now:            now,
		}, DefaultConfig(), nil); err != nil {
			t.Fatalf("Save at %v: %v", now, err)
		}
	}

	store := NewStore(project)
	if ts := store.ResolveLatest("sess-1"); ts != "20260826_110000" {
		t.Fatalf("latest=%q", ts)
	}

	idx, err := NewIndexFile(store, 50).Load()
	if err != nil {
		t.Fatalf("Load index: %v", err)
	}
	if len(idx.Summaries) != 2 {
		t.Fatalf("len=%d", len(idx.Summaries))
	}
	if idx.Summaries[0].Timestamp != "20260826_110000" || idx.Summaries[1].Timestamp != "20260826_100000" {
		t.Fatalf("order=%q,%q", idx.Summaries[0].Timestamp, idx.Summaries[1].Timestamp)
	}
}
