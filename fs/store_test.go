package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Snapshot File Storage
// The store keeps one file per format and replaces them on every write

func artifacts(json, xml, csv string) []*serpdump.Artifact {
	return []*serpdump.Artifact{
		{Format: serpdump.FormatJSON, Content: []byte(json)},
		{Format: serpdump.FormatXML, Content: []byte(xml)},
		{Format: serpdump.FormatCSV, Content: []byte(csv)},
	}
}

func TestArtifactStore_ReplaceWritesNamedFiles(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	dir := filepath.Join(t.TempDir(), "out")
	store := fs.NewArtifactStore(dir)

	// When I replace the snapshot
	err := store.Replace(context.Background(), artifacts("[]\n", "<ArrayOfSearchResult/>\n", "Title,Link,Snippet,Icon\n"))

	// Then the three files exist with exactly the encoded content
	require.NoError(t, err)
	for name, want := range map[string]string{
		"Results.json": "[]\n",
		"Results.xml":  "<ArrayOfSearchResult/>\n",
		"Results.csv":  "Title,Link,Snippet,Icon\n",
	} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}

	// And no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestArtifactStore_ReplaceOverwritesPreviousSnapshot(t *testing.T) {
	t.Parallel()

	// Given a store with a previous snapshot
	store := fs.NewArtifactStore(t.TempDir())
	require.NoError(t, store.Replace(context.Background(), artifacts("old json, quite long", "old xml", "old csv")))

	// When I replace it with shorter content
	require.NoError(t, store.Replace(context.Background(), artifacts("new", "new", "new")))

	// Then reads return only the new content
	for _, f := range serpdump.Formats() {
		a, err := store.Read(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, "new", string(a.Content))
	}
}

func TestArtifactStore_ReadReportsWriteTime(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())
	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Replace(context.Background(), artifacts("j", "x", "c")))

	a, err := store.Read(context.Background(), serpdump.FormatCSV)

	require.NoError(t, err)
	assert.True(t, a.WrittenAt.After(before), "mod time %v should be after %v", a.WrittenAt, before)
	assert.Empty(t, a.Hash)
}

func TestArtifactStore_ReadReturnsNotFoundBeforeFirstWrite(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	_, err := store.Read(context.Background(), serpdump.FormatJSON)

	require.Error(t, err)
	assert.Equal(t, serpdump.ENOTFOUND, serpdump.ErrorCode(err))
	assert.Contains(t, serpdump.ErrorMessage(err), "Results.json")
}

func TestArtifactStore_ReadRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	_, err := store.Read(context.Background(), serpdump.Format("../etc/passwd"))

	assert.Equal(t, serpdump.EINVALID, serpdump.ErrorCode(err))
}

func TestArtifactStore_FailedFormatDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	// Given a store whose XML write fails
	dir := t.TempDir()
	store := fs.NewArtifactStore(dir, fs.WithWriteFunc(func(path string, data []byte) error {
		if filepath.Base(path) == "Results.xml" {
			return errors.New("disk full")
		}
		return fs.WriteFileAtomic(path, data)
	}))

	// When I replace the snapshot
	err := store.Replace(context.Background(), artifacts("j", "x", "c"))

	// Then the failure names XML only
	var pe *serpdump.PersistError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Failed(serpdump.FormatXML))
	assert.False(t, pe.Failed(serpdump.FormatJSON))
	assert.False(t, pe.Failed(serpdump.FormatCSV))

	// And the other formats were written
	a, err := store.Read(context.Background(), serpdump.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "c", string(a.Content))
	_, err = store.Read(context.Background(), serpdump.FormatXML)
	assert.Equal(t, serpdump.ENOTFOUND, serpdump.ErrorCode(err))
}

func TestArtifactStore_ReadWaitsForSlowWrite(t *testing.T) {
	t.Parallel()

	// Given a store with an existing snapshot
	store := fs.NewArtifactStore(t.TempDir())
	require.NoError(t, store.Replace(context.Background(), artifacts("old", "old", "old")))

	// And a writer that writes in place, pausing halfway through each file
	full := make([]byte, 64*1024)
	for i := range full {
		full[i] = 'a' + byte(i%26)
	}
	halfway := make(chan struct{})
	var once sync.Once
	slow := fs.NewArtifactStore(dirOf(t, store), fs.WithWriteFunc(func(path string, data []byte) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := f.Write(data[:len(data)/2]); err != nil {
			return err
		}
		once.Do(func() { close(halfway) })
		time.Sleep(50 * time.Millisecond)
		_, err = f.Write(data[len(data)/2:])
		return err
	}))

	// When a read starts while the write is in progress
	done := make(chan error, 1)
	go func() {
		done <- slow.Replace(context.Background(), artifacts(string(full), string(full), string(full)))
	}()
	<-halfway
	a, err := slow.Read(context.Background(), serpdump.FormatJSON)

	// Then the read observes the complete new content, never a truncated file
	require.NoError(t, err)
	assert.Equal(t, full, a.Content)
	require.NoError(t, <-done)
}

func TestArtifactStore_ConcurrentReplaceAndRead(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())
	snapshots := []string{"first snapshot content", "second", "third one is the longest of them all"}
	valid := map[string]bool{}
	for _, s := range snapshots {
		valid[s] = true
	}
	require.NoError(t, store.Replace(context.Background(), artifacts(snapshots[0], snapshots[0], snapshots[0])))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := snapshots[i%len(snapshots)]
			assert.NoError(t, store.Replace(context.Background(), artifacts(s, s, s)))
		}()
		go func() {
			defer wg.Done()
			a, err := store.Read(context.Background(), serpdump.FormatCSV)
			if assert.NoError(t, err) {
				assert.True(t, valid[string(a.Content)], "torn read: %q", a.Content)
			}
		}()
	}
	wg.Wait()
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "Results.csv")
		require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

		require.NoError(t, fs.WriteFileAtomic(path, []byte("next")))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "next", string(got))
	})

	t.Run("fails for missing directory", func(t *testing.T) {
		t.Parallel()

		err := fs.WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "Results.csv"), []byte("x"))

		require.Error(t, err)
	})
}

// dirOf returns the directory of store's files.
func dirOf(t *testing.T, store *fs.ArtifactStore) string {
	t.Helper()
	return filepath.Dir(store.Path(serpdump.FormatJSON))
}
