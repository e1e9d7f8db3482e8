package keeper

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theimaginaryfoundation/context-keeper/keeper/fileutils"
	"github.com/theimaginaryfoundation/context-keeper/keeper/lock"
)

// IndexFile is the repository for the per-project index.json. Every mutation
// runs as one load-mutate-persist step under an advisory lock, so concurrent
// sessions writing to the same project cannot lose updates, and the file is
// replaced atomically so readers never see a partial index.
type IndexFile struct {
	path         string
	lockPath     string
	retentionCap int
}

// NewIndexFile binds the index repository to a store and retention cap.
func NewIndexFile(store *Store, retentionCap int) *IndexFile {
	return &IndexFile{
		path:         store.IndexPath(),
		lockPath:     store.LockPath(),
		retentionCap: retentionCap,
	}
}

// Load reads the index. A missing or corrupt file initializes an empty one;
// only a filesystem read failure is an error.
func (f *IndexFile) Load() (Index, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Index{}, nil
		}
		return Index{}, fmt.Errorf("read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		// A corrupt index must not block new snapshots; start over.
		return Index{}, nil
	}
	return idx, nil
}

// Update applies mutate to the index as a single locked read-modify-write.
func (f *IndexFile) Update(mutate func(*Index)) error {
	fl, err := lock.Acquire(f.lockPath)
	if err != nil {
		return fmt.Errorf("lock index: %w", err)
	}
	defer fl.Release()

	idx, err := f.Load()
	if err != nil {
		return err
	}
	mutate(&idx)
	if err := fileutils.WriteJSONAtomic(f.path, idx); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// Register prepends the entry and truncates to the retention cap, newest
// first. Callers invoke this only after the snapshot write succeeded, which
// keeps every index entry backed by a snapshot on disk.
func (f *IndexFile) Register(entry IndexEntry) error {
	return f.Update(func(idx *Index) {
		idx.Summaries = append([]IndexEntry{entry}, idx.Summaries...)
		if len(idx.Summaries) > f.retentionCap {
			idx.Summaries = idx.Summaries[:f.retentionCap]
		}
	})
}

// MarkLoaded records the session whose snapshot was last re-injected.
func (f *IndexFile) MarkLoaded(sessionID string) error {
	return f.Update(func(idx *Index) {
		idx.LastLoaded = sessionID
	})
}
