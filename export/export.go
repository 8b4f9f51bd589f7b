// Package export persists result sets as format snapshots and serves them back.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/serpdump"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ensure Exporter implements serpdump.Exporter at compile time.
var _ serpdump.Exporter = (*Exporter)(nil)

// Exporter encodes a result set with every encoder and replaces the stored
// snapshot. Encoders run concurrently; they only read the records.
type Exporter struct {
	Encoders []serpdump.Encoder
	Store    serpdump.ArtifactStore

	// Now returns the snapshot timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewExporter creates an Exporter writing to store with the given encoders.
func NewExporter(store serpdump.ArtifactStore, encoders ...serpdump.Encoder) *Exporter {
	return &Exporter{Encoders: encoders, Store: store}
}

// Persist encodes records and replaces the stored snapshot.
// A format whose encoder or write fails is reported in a *serpdump.PersistError;
// the remaining formats are still written.
func (e *Exporter) Persist(ctx context.Context, records []serpdump.Record) (*serpdump.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	snapshot := &serpdump.Snapshot{
		ID:        uuid.New().String(),
		CreatedAt: now().UTC(),
		Count:     len(records),
		Hashes:    make(map[serpdump.Format]string, len(e.Encoders)),
	}

	// Each goroutine owns one slot, so no locking is needed.
	artifacts := make([]*serpdump.Artifact, len(e.Encoders))
	encodeErrs := make([]error, len(e.Encoders))
	var g errgroup.Group
	for i, enc := range e.Encoders {
		g.Go(func() error {
			content, err := enc.Encode(records)
			if err != nil {
				encodeErrs[i] = fmt.Errorf("encoding: %w", err)
				return nil
			}
			artifacts[i] = &serpdump.Artifact{
				Format:     enc.Format(),
				Content:    content,
				SnapshotID: snapshot.ID,
			}
			return nil
		})
	}
	_ = g.Wait()

	failures := make(map[serpdump.Format]error)
	toWrite := make([]*serpdump.Artifact, 0, len(artifacts))
	for i, a := range artifacts {
		if encodeErrs[i] != nil {
			failures[e.Encoders[i].Format()] = encodeErrs[i]
			continue
		}
		toWrite = append(toWrite, a)
	}

	if len(toWrite) > 0 {
		if err := e.Store.Replace(ctx, toWrite); err != nil {
			var pe *serpdump.PersistError
			if errors.As(err, &pe) {
				for f, ferr := range pe.Failures {
					failures[f] = ferr
				}
			} else {
				for _, a := range toWrite {
					failures[a.Format] = err
				}
			}
		}
	}

	for _, a := range toWrite {
		if _, failed := failures[a.Format]; !failed {
			snapshot.Hashes[a.Format] = Hash(a.Content)
		}
	}

	if len(failures) > 0 {
		return snapshot, &serpdump.PersistError{Failures: failures}
	}
	return snapshot, nil
}

// Hash returns the hex xxHash of content.
func Hash(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}
