// Package fileutil writes output documents atomically under an advisory lock.
package fileutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another writer held the output lock until the
// context gave up.
var ErrLocked = errors.New("output is locked by another writer")

const lockRetryDelay = 50 * time.Millisecond

// WriteResult describes a completed atomic write.
type WriteResult struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// LockPath returns the advisory lock file guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// WriteAtomic streams write into a temp file next to path and renames it into
// place while holding LockPath(path). The destination is untouched when write
// fails, so readers see either the previous file or the complete new one.
// The lock file is removed before the lock is released.
func WriteAtomic(ctx context.Context, path string, mode os.FileMode, write func(io.Writer) error) (WriteResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("create output directory: %w", err)
	}

	lockPath := LockPath(path)
	lock := flock.New(lockPath)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return WriteResult{}, fmt.Errorf("%w: %w", ErrLocked, ctxErr)
		}
		return WriteResult{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return WriteResult{}, ErrLocked
	}
	defer func() {
		_ = os.Remove(lockPath)
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return WriteResult{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	counter := &countingWriter{}
	if err := write(io.MultiWriter(tmp, hasher, counter)); err != nil {
		return WriteResult{}, err
	}
	if err := tmp.Sync(); err != nil {
		return WriteResult{}, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return WriteResult{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return WriteResult{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return WriteResult{}, fmt.Errorf("rename into place: %w", err)
	}
	committed = true

	return WriteResult{
		Path:   path,
		Bytes:  counter.n,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// FileSHA256 hashes the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
