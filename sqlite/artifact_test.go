package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/export"
	"github.com/fwojciec/serpdump/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.ArtifactStore {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return sqlite.NewArtifactStore(db)
}

func snapshot(id, content string) []*serpdump.Artifact {
	return []*serpdump.Artifact{
		{Format: serpdump.FormatJSON, Content: []byte(content + " json"), SnapshotID: id},
		{Format: serpdump.FormatXML, Content: []byte(content + " xml"), SnapshotID: id},
		{Format: serpdump.FormatCSV, Content: []byte(content + " csv"), SnapshotID: id},
	}
}

func TestArtifactStore_Replace(t *testing.T) {
	t.Parallel()

	t.Run("stores each artifact with its snapshot ID", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()

		require.NoError(t, store.Replace(ctx, snapshot("snap-1", "first")))

		a, err := store.Read(ctx, serpdump.FormatXML)
		require.NoError(t, err)
		assert.Equal(t, "first xml", string(a.Content))
		assert.Equal(t, "snap-1", a.SnapshotID)
		assert.Equal(t, serpdump.FormatXML, a.Format)
	})

	t.Run("replaces previous snapshot", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()
		require.NoError(t, store.Replace(ctx, snapshot("snap-1", "first")))

		require.NoError(t, store.Replace(ctx, snapshot("snap-2", "second")))

		for _, f := range serpdump.Formats() {
			a, err := store.Read(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, "snap-2", a.SnapshotID)
			assert.Equal(t, "second "+string(f), string(a.Content))
		}
	})

	t.Run("stores empty content distinct from missing", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()

		require.NoError(t, store.Replace(ctx, []*serpdump.Artifact{{Format: serpdump.FormatCSV, Content: nil}}))

		a, err := store.Read(ctx, serpdump.FormatCSV)
		require.NoError(t, err)
		assert.Empty(t, a.Content)
		_, err = store.Read(ctx, serpdump.FormatJSON)
		assert.Equal(t, serpdump.ENOTFOUND, serpdump.ErrorCode(err))
	})

	t.Run("rejects whole snapshot on invalid format", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()
		artifacts := append(snapshot("snap-1", "first"), &serpdump.Artifact{Format: "pdf"})

		err := store.Replace(ctx, artifacts)

		var pe *serpdump.PersistError
		require.ErrorAs(t, err, &pe)
		assert.True(t, pe.Failed(serpdump.FormatJSON))
		assert.True(t, pe.Failed("pdf"))
		_, err = store.Read(ctx, serpdump.FormatJSON)
		assert.Equal(t, serpdump.ENOTFOUND, serpdump.ErrorCode(err))
	})

	t.Run("reports failure on cancelled context", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := store.Replace(ctx, snapshot("snap-1", "first"))

		assert.Equal(t, serpdump.EPERSIST, serpdump.ErrorCode(err))
	})

	t.Run("records content hash and write time", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()
		before := time.Now().Add(-time.Second)
		require.NoError(t, store.Replace(ctx, snapshot("snap-1", "first")))

		a, err := store.Read(ctx, serpdump.FormatJSON)

		require.NoError(t, err)
		assert.Equal(t, export.Hash([]byte("first json")), a.Hash)
		assert.True(t, a.WrittenAt.After(before), "written_at %v should be after %v", a.WrittenAt, before)
	})
}

func TestArtifactStore_Read(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for empty database", func(t *testing.T) {
		t.Parallel()

		_, err := openStore(t).Read(context.Background(), serpdump.FormatJSON)

		require.Error(t, err)
		assert.Equal(t, serpdump.ENOTFOUND, serpdump.ErrorCode(err))
	})

	t.Run("never observes a torn snapshot", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		ctx := context.Background()
		require.NoError(t, store.Replace(ctx, snapshot("a", "a")))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				id := []string{"a", "b"}[i%2]
				assert.NoError(t, store.Replace(ctx, snapshot(id, id)))
			}()
			go func() {
				defer wg.Done()
				a, err := store.Read(ctx, serpdump.FormatJSON)
				if assert.NoError(t, err) {
					assert.Equal(t, a.SnapshotID+" json", string(a.Content))
				}
			}()
		}
		wg.Wait()
	})
}
