package export

import (
	"context"

	"github.com/fwojciec/serpdump"
)

// Ensure Gateway implements serpdump.ArtifactGateway at compile time.
var _ serpdump.ArtifactGateway = (*Gateway)(nil)

// Gateway serves stored artifacts for download without re-encoding them.
type Gateway struct {
	store serpdump.ArtifactStore
}

// NewGateway creates a Gateway reading from store.
func NewGateway(store serpdump.ArtifactStore) *Gateway {
	return &Gateway{store: store}
}

// Fetch returns the stored artifact for format verbatim.
// Returns EINVALID for an unsupported format and ENOTFOUND when nothing was
// persisted for it.
func (g *Gateway) Fetch(ctx context.Context, format serpdump.Format) (*serpdump.Artifact, error) {
	f, err := serpdump.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return g.store.Read(ctx, f)
}

// FetchByName parses name as a format and fetches its artifact.
func (g *Gateway) FetchByName(ctx context.Context, name string) (*serpdump.Artifact, error) {
	return g.Fetch(ctx, serpdump.Format(name))
}
