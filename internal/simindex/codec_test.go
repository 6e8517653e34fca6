package simindex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/vectorize"
)

// TestSnapshotRoundTrip: serializing and reloading an index reproduces
// identical query results.
func TestSnapshotRoundTrip(t *testing.T) {
	original := testIndex(t)

	data, err := EncodeSnapshot(original.Snapshot())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	restored, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if restored.Version() != original.Version() {
		t.Errorf("version: expected %q, got %q", original.Version(), restored.Version())
	}
	if restored.Len() != original.Len() {
		t.Errorf("length: expected %d, got %d", original.Len(), restored.Len())
	}

	for _, id := range []int64{1, 2, 3, 4} {
		want, err := original.Query(id, 3)
		if err != nil {
			t.Fatalf("query original: %v", err)
		}
		got, err := restored.Query(id, 3)
		if err != nil {
			t.Fatalf("query restored: %v", err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("id %d: restored index diverged:\nwant %v\ngot  %v", id, want, got)
		}
	}

	q := vectorize.Vector{Version: version, Values: []float64{0.5, 0.5}}
	want, _ := original.QueryVector(q, 4)
	got, _ := restored.QueryVector(q, 4)
	if !reflect.DeepEqual(want, got) {
		t.Errorf("vector query diverged:\nwant %v\ngot  %v", want, got)
	}
}

func TestFromSnapshotValidation(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
	}{
		{"nil", nil},
		{"empty ids", &Snapshot{Version: "v", Dims: 2}},
		{"zero dims", &Snapshot{Version: "v", IDs: []int64{1}}},
		{"missing version", &Snapshot{Dims: 1, IDs: []int64{1}, Rows: []float64{1}}},
		{"row length mismatch", &Snapshot{Version: "v", Dims: 2, IDs: []int64{1}, Rows: []float64{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromSnapshot(tt.snap); !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("expected ErrInvalidSnapshot, got %v", err)
			}
		})
	}
}

func TestDecodeSnapshotGarbage(t *testing.T) {
	if _, err := DecodeSnapshot(nil); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("empty: expected ErrInvalidSnapshot, got %v", err)
	}
	if _, err := DecodeSnapshot([]byte{0xff, 0x01}); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("garbage: expected ErrInvalidSnapshot, got %v", err)
	}
}
