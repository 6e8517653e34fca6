// Package recommend wires the scoring, profiling, vectorization, indexing
// and ranking components into the serving engine. A rebuild produces one
// immutable Snapshot (profile + index + score breakdowns) published
// through an atomic pointer; queries only ever see a fully-old or
// fully-new generation, never a mix.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/profile"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/simindex"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/vectorize"
)

// Engine errors.
var (
	// ErrNotReady indicates the engine has not published its first
	// snapshot yet.
	ErrNotReady = errors.New("recommendation engine not ready")

	// ErrNotFound indicates a property id unknown to the current
	// snapshot generation.
	ErrNotFound = errors.New("property not found")
)

// DefaultNeighborK is the neighbor count used when a query does not
// specify one.
const DefaultNeighborK = 20

// DefaultCandidatePool caps the candidate set fetched for preference
// queries before filtering and ranking.
const DefaultCandidatePool = 200

// Source is the property-storage collaborator boundary: anything that can
// produce the full corpus of property records.
type Source interface {
	LoadAll(ctx context.Context) ([]property.Record, error)
}

// Snapshot is one immutable engine generation. All fields are fixed at
// build time; concurrent readers share it without locking.
type Snapshot struct {
	Profile *profile.Profile
	Index   *simindex.Index
	Scores  map[int64]scoring.Breakdown
	Records map[int64]property.Record
	BuiltAt time.Time
}

// Config configures the engine.
type Config struct {
	// NeighborK is the default similar-property count. Zero means
	// DefaultNeighborK.
	NeighborK int
	// CandidatePool caps preference-query candidates. Zero means
	// DefaultCandidatePool.
	CandidatePool int
	// MaxCategories bounds the fitted property-type vocabulary. Zero
	// means profile.DefaultMaxCategories.
	MaxCategories int
}

// Service is the recommendation engine facade. Safe for concurrent use:
// queries read the current snapshot through an atomic pointer and rebuilds
// only publish fully-built generations.
type Service struct {
	source  Source
	weights *ranking.Weights
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics

	current atomic.Pointer[Snapshot]
}

// NewService creates an engine over the given property source. A nil
// weights pointer selects the default blend; a nil logger selects
// slog.Default; a nil metrics disables instrumentation.
func NewService(source Source, weights *ranking.Weights, cfg Config, logger *slog.Logger, metrics *Metrics) *Service {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NeighborK <= 0 {
		cfg.NeighborK = DefaultNeighborK
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = DefaultCandidatePool
	}
	return &Service{
		source:  source,
		weights: weights,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Snapshot returns the current generation, or nil before the first
// rebuild completes.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ready reports whether a snapshot has been published.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Rebuild runs the full batch pipeline: load, validate, fit, score,
// vectorize, index, swap. A failure at any stage leaves the previously
// published snapshot untouched and serving.
func (s *Service) Rebuild(ctx context.Context) error {
	start := time.Now()
	err := s.rebuild(ctx)
	if s.metrics != nil {
		s.metrics.ObserveRebuild(time.Since(start), err)
	}
	return err
}

func (s *Service) rebuild(ctx context.Context) error {
	records, err := s.source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
	}

	prof, err := profile.Fit(records, func(rec property.Record, p *profile.Profile) profile.Derived {
		b := scoring.Compute(rec, p)
		return profile.Derived{
			SmartLivingScore:   b.SmartLivingScore,
			TransportNorm:      b.TransportNorm,
			AffordabilityScore: b.AffordabilityScore,
		}
	}, profile.FitConfig{MaxCategories: s.cfg.MaxCategories})
	if err != nil {
		return fmt.Errorf("fit profile: %w", err)
	}

	scores := make(map[int64]scoring.Breakdown, len(records))
	vectors := make(map[int64]vectorize.Vector, len(records))
	byID := make(map[int64]property.Record, len(records))
	for _, rec := range records {
		b := scoring.Compute(rec, prof)
		scores[rec.ID] = b
		vectors[rec.ID] = vectorize.Transform(prof, rec, b)
		byID[rec.ID] = rec
	}

	idx, err := simindex.Build(prof.Version, vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	snap := &Snapshot{
		Profile: prof,
		Index:   idx,
		Scores:  scores,
		Records: byID,
		BuiltAt: time.Now(),
	}
	s.publish(snap)

	s.logger.Info("published engine snapshot",
		"profile_version", prof.Version,
		"properties", idx.Len(),
		"vector_len", prof.VectorLen())
	return nil
}

// publish atomically swaps in a new generation.
func (s *Service) publish(snap *Snapshot) {
	s.current.Store(snap)
	if s.metrics != nil {
		s.metrics.SetSnapshot(len(snap.Records))
	}
}

// GetScore returns the score breakdown for a property in the current
// generation. Fails with ErrNotReady before the first snapshot and
// ErrNotFound for unknown identifiers.
func (s *Service) GetScore(id int64) (scoring.Breakdown, error) {
	snap := s.current.Load()
	if snap == nil {
		return scoring.Breakdown{}, ErrNotReady
	}
	b, ok := snap.Scores[id]
	if !ok {
		return scoring.Breakdown{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if s.metrics != nil {
		s.metrics.IncQuery("score")
	}
	return b, nil
}

// RecommendSimilar returns up to k properties most similar to the given
// one, ranked by the hybrid blend. Index errors (unknown id, version
// skew) surface unchanged for the serving layer to map.
func (s *Service) RecommendSimilar(id int64, k int) ([]ranking.Entry, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	if k <= 0 {
		k = s.cfg.NeighborK
	}
	neighbors, err := snap.Index.Query(id, k)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncQuery("similar")
	}
	return ranking.Rank(neighbors, snap.Scores, s.weights, k), nil
}
