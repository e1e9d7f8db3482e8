// Package keeper persists and restores conversational working context across
// context-window compaction events. The write path parses a session
// transcript, generates a summary, and stores it as an immutable snapshot
// under the project's .claude/summaries tree; the read path re-injects the
// most relevant snapshot on session resume.
package keeper

import "time"

// Trigger is the cause of a snapshot: a manual save or automatic compaction.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
)

// TimestampLayout is the snapshot directory timestamp format. It sorts
// lexically in creation order, which the index ordering relies on.
const TimestampLayout = "20060102_150405"

// Metadata describes one snapshot. Written alongside summary.md as
// metadata.json and never mutated afterwards.
type Metadata struct {
	SessionID     string   `json:"session_id"`
	Timestamp     string   `json:"timestamp"`
	CreatedAt     string   `json:"created_at"`
	Trigger       Trigger  `json:"trigger"`
	Cwd           string   `json:"cwd"`
	Topics        []string `json:"topics"`
	FilesModified []string `json:"files_modified"`
	MessageCount  int      `json:"message_count"`
	ToolCallCount int      `json:"tool_call_count"`
}

// IndexEntry is one row in index.json, newest first.
type IndexEntry struct {
	SessionID     string   `json:"session_id"`
	Timestamp     string   `json:"timestamp"`
	CreatedAt     string   `json:"created_at"`
	Trigger       Trigger  `json:"trigger"`
	Project       string   `json:"project"`
	Topics        []string `json:"topics"`
	FilesModified []string `json:"files_modified"`
	MessageCount  int      `json:"message_count"`
	SummaryPath   string   `json:"summary_path"`
}

// Index is the per-project index file contents.
type Index struct {
	Summaries  []IndexEntry `json:"summaries"`
	LastLoaded string       `json:"last_loaded,omitempty"`
}

// Snapshot is a loaded summary + metadata pair.
type Snapshot struct {
	Summary  string
	Metadata Metadata
}

// SessionInfo carries the write-path request fields that describe the
// triggering event, independent of transcript content.
type SessionInfo struct {
	SessionID          string
	Trigger            Trigger
	Cwd                string
	CreatedAt          time.Time
	CustomInstructions string
}

// EntryFromMetadata builds the index row registered after a successful
// snapshot write.
func EntryFromMetadata(meta Metadata, summaryPath string) IndexEntry {
	return IndexEntry{
		SessionID:     meta.SessionID,
		Timestamp:     meta.Timestamp,
		CreatedAt:     meta.CreatedAt,
		Trigger:       meta.Trigger,
		Project:       meta.Cwd,
		Topics:        meta.Topics,
		FilesModified: meta.FilesModified,
		MessageCount:  meta.MessageCount,
		SummaryPath:   summaryPath,
	}
}
