package keeper

import (
	"sort"
	"strings"
	"time"
)

// Retriever answers read-only queries over the store and index. It holds no
// state of its own and never mutates either, except for the explicit
// MarkLoaded bookkeeping the read-path hook performs separately.
type Retriever struct {
	store *Store
	index *IndexFile
}

// NewRetriever binds a retriever to the store and index it reads.
func NewRetriever(store *Store, index *IndexFile) *Retriever {
	return &Retriever{store: store, index: index}
}

// Loaded is a summary resolved together with its index entry.
type Loaded struct {
	Entry   IndexEntry
	Summary string
}

// FindResult is the structured answer to an identifier query. A miss is not
// an error: Entry is nil and Candidates lists the session ids that do exist
// so the caller can present alternatives.
type FindResult struct {
	Entry      *IndexEntry
	Candidates []string
}

// SessionRow is one aggregated line of the sessions listing.
type SessionRow struct {
	SessionID       string
	SnapshotCount   int
	LatestCreatedAt string
	Project         string
	TotalMessages   int
}

// Latest returns the most recent eligible summary: for the given session
// when it has snapshots, otherwise the newest across all sessions. maxAge
// bounds eligibility; zero disables the bound. Returns nil when nothing
// eligible exists.
func (r *Retriever) Latest(sessionID string, maxAge time.Duration, now time.Time) (*Loaded, error) {
	if sessionID != "" {
		if ts := r.store.ResolveLatest(sessionID); ts != "" {
			if snap, err := r.store.ReadSnapshot(sessionID, ts); err == nil {
				loaded := &Loaded{
					Entry:   EntryFromMetadata(snap.Metadata, sessionID+"/"+ts+"/summary.md"),
					Summary: snap.Summary,
				}
				if withinWindow(loaded.Entry.CreatedAt, maxAge, now) {
					return loaded, nil
				}
				return nil, nil
			}
		}
	}

	idx, err := r.index.Load()
	if err != nil {
		return nil, err
	}
	if len(idx.Summaries) == 0 {
		return nil, nil
	}
	entry := idx.Summaries[0]
	if !withinWindow(entry.CreatedAt, maxAge, now) {
		return nil, nil
	}
	summary, err := r.store.ReadSummaryRel(entry.SummaryPath)
	if err != nil {
		return nil, err
	}
	return &Loaded{Entry: entry, Summary: summary}, nil
}

// withinWindow checks the freshness bound. An unparseable creation time does
// not disqualify the entry.
func withinWindow(createdAt string, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return true
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return true
	}
	return now.Sub(t) <= maxAge
}

// Find locates the newest entry whose session id or timestamp starts with
// identifier. An empty identifier resolves to the newest entry overall.
func (r *Retriever) Find(identifier string) (FindResult, error) {
	idx, err := r.index.Load()
	if err != nil {
		return FindResult{}, err
	}

	if identifier == "" {
		if len(idx.Summaries) == 0 {
			return FindResult{}, nil
		}
		entry := idx.Summaries[0]
		return FindResult{Entry: &entry}, nil
	}

	for i := range idx.Summaries {
		e := idx.Summaries[i]
		if strings.HasPrefix(e.SessionID, identifier) || strings.HasPrefix(e.Timestamp, identifier) {
			return FindResult{Entry: &e}, nil
		}
	}

	return FindResult{Candidates: sessionIDs(idx.Summaries)}, nil
}

// Entries returns all index rows for a session-id prefix, or every row when
// prefix is empty, newest first.
func (r *Retriever) Entries(prefix string) ([]IndexEntry, error) {
	idx, err := r.index.Load()
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return idx.Summaries, nil
	}
	var out []IndexEntry
	for _, e := range idx.Summaries {
		if strings.HasPrefix(e.SessionID, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Sessions aggregates index entries per session, most recent activity first.
func (r *Retriever) Sessions() ([]SessionRow, error) {
	idx, err := r.index.Load()
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*SessionRow)
	for _, e := range idx.Summaries {
		row, ok := rows[e.SessionID]
		if !ok {
			row = &SessionRow{SessionID: e.SessionID}
			rows[e.SessionID] = row
		}
		row.SnapshotCount++
		row.TotalMessages += e.MessageCount
		if e.CreatedAt > row.LatestCreatedAt {
			row.LatestCreatedAt = e.CreatedAt
			row.Project = e.Project
		}
	}

	out := make([]SessionRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LatestCreatedAt > out[j].LatestCreatedAt
	})
	return out, nil
}

// LoadEntry reads the summary text an index entry points at.
func (r *Retriever) LoadEntry(entry IndexEntry) (Loaded, error) {
	summary, err := r.store.ReadSummaryRel(entry.SummaryPath)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Entry: entry, Summary: summary}, nil
}

func sessionIDs(entries []IndexEntry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if !seen[e.SessionID] {
			seen[e.SessionID] = true
			ids = append(ids, e.SessionID)
		}
	}
	return ids
}
