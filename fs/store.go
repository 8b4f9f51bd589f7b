// Package fs provides file-based storage for result snapshots.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/serpdump"
)

// Ensure ArtifactStore implements serpdump.ArtifactStore at compile time.
var _ serpdump.ArtifactStore = (*ArtifactStore)(nil)

// WriteFunc writes data to the file at path.
type WriteFunc func(path string, data []byte) error

// ArtifactStore keeps one file per format (Results.json, Results.xml,
// Results.csv) in a single directory.
//
// Replace holds a store-wide write lock for the whole snapshot and Read takes
// a read lock, so readers in this process never see a torn snapshot. Each file
// is written to a temporary name and renamed into place, so readers in other
// processes never see a partially written file.
type ArtifactStore struct {
	dir       string
	writeFile WriteFunc

	mu sync.RWMutex
}

// Option configures an ArtifactStore.
type Option func(*ArtifactStore)

// WithWriteFunc replaces the function used to write each file.
// Defaults to WriteFileAtomic.
func WithWriteFunc(fn WriteFunc) Option {
	return func(s *ArtifactStore) {
		s.writeFile = fn
	}
}

// NewArtifactStore creates a store writing to dir.
// The directory is created on the first Replace.
func NewArtifactStore(dir string, opts ...Option) *ArtifactStore {
	s := &ArtifactStore{
		dir:       dir,
		writeFile: WriteFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file path holding the artifact for format.
func (s *ArtifactStore) Path(format serpdump.Format) string {
	return filepath.Join(s.dir, format.Filename())
}

// Replace writes each artifact to its file. A failed write does not stop the
// remaining formats; failures are returned as *serpdump.PersistError.
func (s *ArtifactStore) Replace(ctx context.Context, artifacts []*serpdump.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make(map[serpdump.Format]error)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		for _, a := range artifacts {
			failures[a.Format] = err
		}
		return &serpdump.PersistError{Failures: failures}
	}

	for _, a := range artifacts {
		if _, err := serpdump.ParseFormat(string(a.Format)); err != nil {
			failures[a.Format] = err
			continue
		}
		if err := ctx.Err(); err != nil {
			failures[a.Format] = err
			continue
		}
		if err := s.writeFile(s.Path(a.Format), a.Content); err != nil {
			failures[a.Format] = err
		}
	}

	if len(failures) > 0 {
		return &serpdump.PersistError{Failures: failures}
	}
	return nil
}

// Read returns the content of the file for format.
// Returns ENOTFOUND if the file does not exist.
func (s *ArtifactStore) Read(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error) {
	if _, err := serpdump.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(format)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, serpdump.Errorf(serpdump.ENOTFOUND, "%s does not exist", format.Filename())
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", format.Filename(), err)
	}

	a := &serpdump.Artifact{Format: format, Content: data}
	if info, err := os.Stat(path); err == nil {
		a.WrittenAt = info.ModTime().UTC()
	}
	return a, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// over path. The temporary file is removed on failure.
func WriteFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
