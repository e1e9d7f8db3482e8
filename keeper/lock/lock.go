// Package lock provides an advisory file lock guarding index updates when
// more than one session writes to the same project concurrently.
package lock

import (
	"os"
	"path/filepath"
	"syscall"
)

// FileLock is an exclusive advisory lock backed by flock(2).
type FileLock struct {
	file     *os.File
	released bool
}

// Acquire obtains an exclusive lock on path, blocking until it is available.
// The lock file and its parent directory are created as needed.
func Acquire(path string) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		file.Close()
		return nil, err
	}
	return &FileLock{file: file}, nil
}

// Release unlocks and closes the lock file. Safe to call twice.
func (l *FileLock) Release() error {
	if l.released {
		return nil
	}
	l.released = true
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
