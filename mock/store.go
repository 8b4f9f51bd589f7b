package mock

import (
	"context"

	"github.com/fwojciec/serpdump"
)

// Compile-time interface verification.
var (
	_ serpdump.ArtifactStore   = (*ArtifactStore)(nil)
	_ serpdump.Exporter        = (*Exporter)(nil)
	_ serpdump.ArtifactGateway = (*ArtifactGateway)(nil)
)

// ArtifactStore is a mock implementation of serpdump.ArtifactStore.
type ArtifactStore struct {
	ReplaceFn func(ctx context.Context, artifacts []*serpdump.Artifact) error
	ReadFn    func(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error)
}

func (s *ArtifactStore) Replace(ctx context.Context, artifacts []*serpdump.Artifact) error {
	return s.ReplaceFn(ctx, artifacts)
}

func (s *ArtifactStore) Read(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error) {
	return s.ReadFn(ctx, format)
}

// Exporter is a mock implementation of serpdump.Exporter.
type Exporter struct {
	PersistFn func(ctx context.Context, records []serpdump.Record) (*serpdump.Snapshot, error)
}

func (e *Exporter) Persist(ctx context.Context, records []serpdump.Record) (*serpdump.Snapshot, error) {
	return e.PersistFn(ctx, records)
}

// ArtifactGateway is a mock implementation of serpdump.ArtifactGateway.
type ArtifactGateway struct {
	FetchFn func(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error)
}

func (g *ArtifactGateway) Fetch(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error) {
	return g.FetchFn(ctx, format)
}
