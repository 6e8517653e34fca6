package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/artifact"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/simindex"
)

// ArtifactKey is the store key under which the current engine artifact is
// persisted.
const ArtifactKey = "engine-snapshot.cbor"

// SaveArtifact persists the current snapshot's profile and index to the
// store as a versioned envelope. Fails with ErrNotReady before the first
// snapshot is published.
func (s *Service) SaveArtifact(ctx context.Context, store artifact.Store) error {
	snap := s.current.Load()
	if snap == nil {
		return ErrNotReady
	}
	env, err := artifact.NewEnvelope(snap.Profile, snap.Index.Snapshot())
	if err != nil {
		return err
	}
	data, err := artifact.Encode(env)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, ArtifactKey, data); err != nil {
		return err
	}
	s.logger.Info("persisted engine artifact",
		"profile_version", snap.Profile.Version,
		"bytes", len(data))
	return nil
}

// RestoreFromArtifact loads a persisted profile and index and publishes a
// snapshot from them, recomputing score breakdowns from the live corpus
// under the restored profile. This gives a warm start without refitting;
// version checks inside the artifact codec reject mismatched envelopes.
//
// The corpus may have drifted since the artifact was written. Records
// without an index row are dropped from the snapshot so every id the
// snapshot serves has both a score and a vector; ids that only exist in
// the index rank with zero quality terms until the next rebuild replaces
// the generation.
func (s *Service) RestoreFromArtifact(ctx context.Context, store artifact.Store) error {
	data, err := store.Get(ctx, ArtifactKey)
	if err != nil {
		return err
	}
	env, err := artifact.Decode(data)
	if err != nil {
		return err
	}
	idx, err := simindex.FromSnapshot(env.Index)
	if err != nil {
		return err
	}

	records, err := s.source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	scores := make(map[int64]scoring.Breakdown, len(records))
	byID := make(map[int64]property.Record, len(records))
	skipped := 0
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		if !idx.Contains(rec.ID) {
			skipped++
			continue
		}
		scores[rec.ID] = scoring.Compute(rec, env.Profile)
		byID[rec.ID] = rec
	}
	if skipped > 0 {
		s.logger.Warn("corpus drifted since artifact was written",
			"skipped_records", skipped,
			"indexed", idx.Len())
	}

	s.publish(&Snapshot{
		Profile: env.Profile,
		Index:   idx,
		Scores:  scores,
		Records: byID,
		BuiltAt: time.Now(),
	})
	s.logger.Info("restored engine snapshot from artifact",
		"profile_version", env.ProfileVersion,
		"properties", idx.Len())
	return nil
}
