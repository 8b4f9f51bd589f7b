package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/serpdump"
)

// Ensure LoggingArtifactStore implements serpdump.ArtifactStore.
var _ serpdump.ArtifactStore = (*LoggingArtifactStore)(nil)

// LoggingArtifactStore wraps an ArtifactStore with logging.
type LoggingArtifactStore struct {
	next   serpdump.ArtifactStore
	logger *slog.Logger
}

// NewLoggingArtifactStore creates a new LoggingArtifactStore.
func NewLoggingArtifactStore(next serpdump.ArtifactStore, logger *slog.Logger) *LoggingArtifactStore {
	return &LoggingArtifactStore{next: next, logger: logger}
}

// Replace delegates to the wrapped store and logs one line per artifact.
func (s *LoggingArtifactStore) Replace(ctx context.Context, artifacts []*serpdump.Artifact) (err error) {
	defer func(begin time.Time) {
		var pe *serpdump.PersistError
		errors.As(err, &pe)
		for _, a := range artifacts {
			attrs := []any{
				"format", a.Format,
				"snapshot", a.SnapshotID,
				"bytes", len(a.Content),
				"duration", time.Since(begin),
			}
			if pe != nil {
				attrs = append(attrs, "err", pe.Failures[a.Format])
			} else {
				attrs = append(attrs, "err", err)
			}
			s.logger.Info("store replace", attrs...)
		}
	}(time.Now())
	return s.next.Replace(ctx, artifacts)
}

// Read delegates to the wrapped store and logs the operation.
func (s *LoggingArtifactStore) Read(ctx context.Context, format serpdump.Format) (artifact *serpdump.Artifact, err error) {
	defer func(begin time.Time) {
		var n int
		if artifact != nil {
			n = len(artifact.Content)
		}
		s.logger.Debug("store read",
			"format", format,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Read(ctx, format)
}
