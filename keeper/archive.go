package keeper

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// transcriptArchiveName is the compressed raw-transcript copy stored inside
// each snapshot directory, making a snapshot self-contained.
const transcriptArchiveName = "transcript.jsonl.zst"

// ArchiveTranscript compresses the transcript file into the snapshot
// directory. The archive is compressed to a temp file and renamed into
// place, so the snapshot never holds a truncated archive. Best-effort
// supplement to the snapshot: callers log failures and continue.
func (s *Store) ArchiveTranscript(sessionID, timestamp, transcriptPath string) (string, error) {
	src, err := os.Open(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("open transcript: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(s.snapshotDir(sessionID, timestamp), transcriptArchiveName)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp_keeper_*")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	encoder, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}
	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		tmp.Close()
		return "", fmt.Errorf("compress transcript: %w", err)
	}
	if err := encoder.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod archive: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return "", fmt.Errorf("place archive: %w", err)
	}
	return destPath, nil
}

// DecompressTranscript restores a snapshot's archived transcript to a temp
// file. Returns the temp path and a cleanup function the caller must defer.
func (s *Store) DecompressTranscript(sessionID, timestamp string) (string, func(), error) {
	src, err := os.Open(filepath.Join(s.snapshotDir(sessionID, timestamp), transcriptArchiveName))
	if err != nil {
		return "", nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return "", nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	tmp, err := os.CreateTemp("", "keeper-transcript-*.jsonl")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, decoder); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("decompress transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp: %w", err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}
