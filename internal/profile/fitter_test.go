package profile

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

const epsilon = 1e-9

// noopDerive satisfies DeriveFunc for fits where the derived scores don't
// matter.
func noopDerive(property.Record, *Profile) Derived { return Derived{} }

func TestFitEmptyCorpus(t *testing.T) {
	_, err := Fit(nil, noopDerive, FitConfig{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitRequiresDerive(t *testing.T) {
	if _, err := Fit([]property.Record{{ID: 1}}, nil, FitConfig{}); err == nil {
		t.Error("expected error for nil derive func")
	}
}

func TestFitVersioning(t *testing.T) {
	records := []property.Record{{ID: 1}}

	a, err := Fit(records, noopDerive, FitConfig{})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	b, err := Fit(records, noopDerive, FitConfig{})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if a.Version == "" || a.Version == b.Version {
		t.Errorf("each fit must produce a distinct version, got %q and %q", a.Version, b.Version)
	}

	pinned, err := Fit(records, noopDerive, FitConfig{Version: "v7"})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if pinned.Version != "v7" {
		t.Errorf("expected pinned version v7, got %q", pinned.Version)
	}
}

// TestFitCategories pins the vocabulary rules: top-N by frequency with
// ascending-name tie-breaks, final list sorted alphabetically, and types
// beyond the cap excluded.
func TestFitCategories(t *testing.T) {
	records := []property.Record{
		{ID: 1, PropertyType: "villa"},
		{ID: 2, PropertyType: "villa"},
		{ID: 3, PropertyType: "villa"},
		{ID: 4, PropertyType: "apartment"},
		{ID: 5, PropertyType: "apartment"},
		{ID: 6, PropertyType: "studio"}, // ties with "loft" at 1, loses on name
		{ID: 7, PropertyType: "loft"},
	}

	prof, err := Fit(records, noopDerive, FitConfig{MaxCategories: 3})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	expected := []string{"apartment", "loft", "villa"}
	if !reflect.DeepEqual(prof.Categories, expected) {
		t.Errorf("expected categories %v, got %v", expected, prof.Categories)
	}

	// Excluded and unknown types land in the trailing "other" slot.
	if slot := prof.CategorySlot("studio"); slot != len(prof.Categories) {
		t.Errorf("excluded type should map to other slot %d, got %d", len(prof.Categories), slot)
	}
}

func TestFitVocabulary(t *testing.T) {
	records := []property.Record{
		{ID: 1, Amenities: "['Gym', 'Pool']"},
		{ID: 2, Amenities: "pool garden"},
	}

	prof, err := Fit(records, noopDerive, FitConfig{})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	expected := []string{"garden", "gym", "pool"}
	if !reflect.DeepEqual(prof.AmenityVocab, expected) {
		t.Errorf("expected vocabulary %v, got %v", expected, prof.AmenityVocab)
	}
	if slot := prof.VocabSlot("sauna"); slot != -1 {
		t.Errorf("out-of-vocabulary token should return -1, got %d", slot)
	}
}

// TestFitBounds checks the 1st/99th percentile bounds over the raw
// transport and price-to-income signals, with absent values excluded.
func TestFitBounds(t *testing.T) {
	records := make([]property.Record, 0, 101)
	for i := 0; i <= 100; i++ {
		v := float64(i)
		records = append(records, property.Record{
			ID:                 int64(i + 1),
			TransportScore:     &v,
			PriceToIncomeRatio: property.FloatPtr(v / 10),
		})
	}
	// A record with both signals absent must not skew the bounds.
	records = append(records, property.Record{ID: 200})

	prof, err := Fit(records, noopDerive, FitConfig{})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	tb := prof.Bounds[FeatureTransportScore]
	if math.Abs(tb.Lo-1) > epsilon || math.Abs(tb.Hi-99) > epsilon {
		t.Errorf("transport bounds: expected [1, 99], got [%f, %f]", tb.Lo, tb.Hi)
	}
	pb := prof.Bounds[FeaturePTIRatio]
	if math.Abs(pb.Lo-0.1) > epsilon || math.Abs(pb.Hi-9.9) > epsilon {
		t.Errorf("PTI bounds: expected [0.1, 9.9], got [%f, %f]", pb.Lo, pb.Hi)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
	}{
		{"empty", nil, 50, 0},
		{"single value", []float64{42}, 1, 42},
		{"median of pair interpolates", []float64{10, 20}, 50, 15},
		{"min", []float64{3, 1, 2}, 0, 1},
		{"max", []float64{3, 1, 2}, 100, 3},
		{"first percentile of 0..100", seq(0, 100), 1, 1},
		{"99th percentile of 0..100", seq(0, 100), 99, 99},
		{"interpolated rank", []float64{0, 10, 20, 30}, 25, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.q)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

// TestPercentileDoesNotMutate verifies the input slice ordering survives.
func TestPercentileDoesNotMutate(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	if !reflect.DeepEqual(values, []float64{3, 1, 2}) {
		t.Errorf("input mutated: %v", values)
	}
}

// TestFitScaler pins population (not sample) standard deviation and mean
// imputation feeds.
func TestFitScaler(t *testing.T) {
	records := []property.Record{
		{ID: 1, FloorAreaM2: property.FloatPtr(50)},
		{ID: 2, FloorAreaM2: property.FloatPtr(100)},
		{ID: 3, FloorAreaM2: property.FloatPtr(150)},
		{ID: 4}, // absent: excluded from the statistics
	}

	prof, err := Fit(records, noopDerive, FitConfig{})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	s := prof.Scaler[FeatureFloorArea]
	if math.Abs(s.Mean-100) > epsilon {
		t.Errorf("mean: expected 100, got %f", s.Mean)
	}
	// population std of {50,100,150} = sqrt(5000/3)
	want := math.Sqrt(5000.0 / 3)
	if math.Abs(s.Std-want) > epsilon {
		t.Errorf("std: expected %f, got %f", want, s.Std)
	}
	if prof.Mean(FeatureFloorArea) != s.Mean {
		t.Error("Mean accessor should expose the fitted mean")
	}
}

func seq(lo, hi int) []float64 {
	out := make([]float64, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, float64(i))
	}
	return out
}
