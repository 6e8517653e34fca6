// Package store provides the property-storage collaborator boundary:
// repositories that load the property corpus for the recommendation
// engine.
package store

import (
	"context"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

// Repository loads property records for the engine. Implementations must
// validate each record structurally and surface
// property.ErrMalformedRecord at ingestion rather than coercing bad data.
type Repository interface {
	// LoadAll returns the full property corpus.
	LoadAll(ctx context.Context) ([]property.Record, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	records []property.Record
}

// NewInMemoryRepository creates an in-memory repository over the given
// records.
func NewInMemoryRepository(records []property.Record) *InMemoryRepository {
	copied := make([]property.Record, len(records))
	copy(copied, records)
	return &InMemoryRepository{records: copied}
}

// LoadAll returns a copy of the stored records so callers cannot mutate
// repository state.
func (r *InMemoryRepository) LoadAll(_ context.Context) ([]property.Record, error) {
	out := make([]property.Record, len(r.records))
	copy(out, r.records)
	for _, rec := range out {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
