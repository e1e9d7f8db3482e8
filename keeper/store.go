package keeper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/context-keeper/keeper/fileutils"
)

// Store owns the on-disk snapshot tree under <project>/.claude/summaries.
// Snapshots are immutable once written; only the per-session latest pointer
// is ever rewritten.
type Store struct {
	root string
}

// NewStore returns a store rooted at the project's summaries directory.
func NewStore(projectPath string) *Store {
	return &Store{root: SummariesDir(projectPath)}
}

// Root returns the summaries directory the store operates on.
func (s *Store) Root() string {
	return s.root
}

// IndexPath is the location of index.json within the store.
func (s *Store) IndexPath() string {
	return filepath.Join(s.root, "index.json")
}

// LockPath is the advisory lock file guarding index updates.
func (s *Store) LockPath() string {
	return filepath.Join(s.root, "index.lock")
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

func (s *Store) snapshotDir(sessionID, timestamp string) string {
	return filepath.Join(s.root, sessionID, timestamp)
}

// WriteSnapshot persists summary.md and metadata.json under the session and
// timestamp directory. Both artifacts are written atomically, metadata
// first, so a visible summary.md always belongs to a complete snapshot.
// Returns the summary path relative to the store root; that is the path
// registered in the index.
func (s *Store) WriteSnapshot(sessionID, timestamp, summary string, meta Metadata) (string, error) {
	dir := s.snapshotDir(sessionID, timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	if err := fileutils.WriteJSONAtomic(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := fileutils.WriteFileAtomic(filepath.Join(dir, "summary.md"), []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	return filepath.ToSlash(filepath.Join(sessionID, timestamp, "summary.md")), nil
}

// UpdateLatestPointer repoints the session's latest reference to timestamp.
// The pointer is a plain file holding the timestamp rather than a symlink,
// so it resolves the same way on every platform. Rewriting the same value
// is a no-op with respect to observable state.
func (s *Store) UpdateLatestPointer(sessionID, timestamp string) error {
	path := filepath.Join(s.sessionDir(sessionID), "latest")
	if err := fileutils.WriteFileAtomic(path, []byte(timestamp+"\n"), 0o644); err != nil {
		return fmt.Errorf("update latest pointer: %w", err)
	}
	return nil
}

// ResolveLatest returns the timestamp the session's latest pointer names,
// or "" when the session has no pointer.
func (s *Store) ResolveLatest(sessionID string) string {
	b, err := os.ReadFile(filepath.Join(s.sessionDir(sessionID), "latest"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// ReadSnapshot loads the summary and metadata written for the given session
// and timestamp.
func (s *Store) ReadSnapshot(sessionID, timestamp string) (Snapshot, error) {
	dir := s.snapshotDir(sessionID, timestamp)

	summary, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read summary: %w", err)
	}

	var meta Metadata
	metaBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return Snapshot{}, fmt.Errorf("parse metadata: %w", err)
	}

	return Snapshot{Summary: string(summary), Metadata: meta}, nil
}

// ReadSummaryRel reads a summary by its index-relative path.
func (s *Store) ReadSummaryRel(relPath string) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return string(b), nil
}
