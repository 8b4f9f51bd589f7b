package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/serpdump"
)

// Compile-time interface verification.
var _ serpdump.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements serpdump.ArtifactStore using SQLite.
// Replace is all-or-nothing: the whole snapshot is written in one
// transaction, so readers see either the previous snapshot or the new one.
type ArtifactStore struct {
	db *DB
}

// NewArtifactStore creates a new ArtifactStore.
func NewArtifactStore(db *DB) *ArtifactStore {
	return &ArtifactStore{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Replace writes all artifacts in one transaction. On failure nothing is
// written and every format is reported as failed.
func (s *ArtifactStore) Replace(ctx context.Context, artifacts []*serpdump.Artifact) error {
	if err := s.replace(ctx, artifacts); err != nil {
		failures := make(map[serpdump.Format]error, len(artifacts))
		for _, a := range artifacts {
			failures[a.Format] = err
		}
		return &serpdump.PersistError{Failures: failures}
	}
	return nil
}

func (s *ArtifactStore) replace(ctx context.Context, artifacts []*serpdump.Artifact) error {
	for _, a := range artifacts {
		if _, err := serpdump.ParseFormat(string(a.Format)); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	writtenAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, a := range artifacts {
		content := a.Content
		if content == nil {
			content = []byte{}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (format, content, content_hash, snapshot_id, written_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(format) DO UPDATE SET
				content = excluded.content,
				content_hash = excluded.content_hash,
				snapshot_id = excluded.snapshot_id,
				written_at = excluded.written_at
		`, string(a.Format), content, hashContent(content), a.SnapshotID, writtenAt)
		if err != nil {
			return fmt.Errorf("writing %s: %w", a.Format, err)
		}
	}

	return tx.Commit()
}

// Read returns the stored artifact for format.
// Returns ENOTFOUND if the format was never written.
func (s *ArtifactStore) Read(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error) {
	if _, err := serpdump.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	a := &serpdump.Artifact{Format: format}
	var writtenAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT content, content_hash, snapshot_id, written_at
		FROM artifacts
		WHERE format = ?
	`, string(format)).Scan(&a.Content, &a.Hash, &a.SnapshotID, &writtenAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, serpdump.Errorf(serpdump.ENOTFOUND, "%s does not exist", format.Filename())
	}
	if err != nil {
		return nil, err
	}
	if a.Content == nil {
		a.Content = []byte{}
	}
	if a.WrittenAt, err = parseRFC3339(writtenAt, "written_at"); err != nil {
		return nil, err
	}
	return a, nil
}
