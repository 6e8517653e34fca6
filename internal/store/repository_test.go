package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

func TestInMemoryRepositoryLoadAll(t *testing.T) {
	records := []property.Record{
		{ID: 1, PropertyType: "apartment"},
		{ID: 2, PropertyType: "villa"},
	}
	repo := NewInMemoryRepository(records)

	got, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}

	// Mutating the returned slice must not affect repository state.
	got[0].PropertyType = "mutated"
	again, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0].PropertyType != "apartment" {
		t.Error("LoadAll leaked internal state to callers")
	}
}

func TestInMemoryRepositoryValidates(t *testing.T) {
	repo := NewInMemoryRepository([]property.Record{{ID: 0}})
	_, err := repo.LoadAll(context.Background())
	if !errors.Is(err, property.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestNullFloat(t *testing.T) {
	if got := nullFloat(sql.NullFloat64{}); got != nil {
		t.Errorf("invalid null float should map to nil, got %v", *got)
	}
	got := nullFloat(sql.NullFloat64{Float64: 3.5, Valid: true})
	if got == nil || *got != 3.5 {
		t.Errorf("got %v, want 3.5", got)
	}
	// Valid zero stays distinguishable from absent.
	got = nullFloat(sql.NullFloat64{Float64: 0, Valid: true})
	if got == nil || *got != 0 {
		t.Errorf("valid zero mapped to %v", got)
	}
}

func TestNullInt(t *testing.T) {
	if got := nullInt(sql.NullInt64{}); got != nil {
		t.Errorf("invalid null int should map to nil, got %v", *got)
	}
	got := nullInt(sql.NullInt64{Int64: 4, Valid: true})
	if got == nil || *got != 4 {
		t.Errorf("got %v, want 4", got)
	}
}
