package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("migrates empty database", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		defer db.Close()

		ctx := context.Background()
		version, err := db.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, version)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&count))
		assert.Zero(t, count)
	})

	t.Run("reopens existing database without losing the snapshot", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "serpdump.db")
		ctx := context.Background()

		first := sqlite.NewDB(path)
		require.NoError(t, first.Open())
		err := sqlite.NewArtifactStore(first).Replace(ctx, []*serpdump.Artifact{
			{Format: serpdump.FormatCSV, Content: []byte("Title,Link,Snippet,Icon\n"), SnapshotID: "snap-1"},
		})
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second := sqlite.NewDB(path)
		require.NoError(t, second.Open())
		defer second.Close()

		a, err := sqlite.NewArtifactStore(second).Read(ctx, serpdump.FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "snap-1", a.SnapshotID)
		version, err := second.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, sqlite.NewDB("/nonexistent/path/db.sqlite").Open())
	})

	t.Run("uses WAL for file databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "serpdump.db"))
		require.NoError(t, db.Open())
		defer db.Close()

		var mode string
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("close before open is a no-op", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sqlite.NewDB(":memory:").Close())
	})
}
