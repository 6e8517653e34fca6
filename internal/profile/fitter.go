package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

// ErrInsufficientData indicates Fit was called on an empty corpus.
var ErrInsufficientData = errors.New("insufficient data to fit profile")

// DefaultMaxCategories caps the property-type vocabulary. Types outside
// the top-N by frequency map to the "other" bucket.
const DefaultMaxCategories = 32

// Derived carries the corpus-relative scores the scaler needs but which
// only the score calculator can produce. The caller supplies a DeriveFunc
// so this package never depends on the scoring package.
type Derived struct {
	SmartLivingScore   float64
	TransportNorm      float64
	AffordabilityScore float64
}

// DeriveFunc computes derived scores for one record against a profile
// whose bounds are already fitted.
type DeriveFunc func(rec property.Record, p *Profile) Derived

// FitConfig configures profile fitting.
type FitConfig struct {
	// MaxCategories bounds the property-type vocabulary. Zero means
	// DefaultMaxCategories.
	MaxCategories int
	// Version overrides the generated version tag. Empty means a fresh
	// UUID, making every fit a distinct profile generation.
	Version string
}

// Fit computes a new profile from the full corpus. It runs in two phases:
// first the vocabularies and percentile bounds over the raw signals, then
// the scaler statistics over the numeric vector features, using derive to
// obtain the corpus-relative scores. Fit fails with ErrInsufficientData on
// an empty corpus and never mutates records.
func Fit(records []property.Record, derive DeriveFunc, cfg FitConfig) (*Profile, error) {
	if len(records) == 0 {
		return nil, ErrInsufficientData
	}
	if derive == nil {
		return nil, fmt.Errorf("profile: derive func is required")
	}
	maxCats := cfg.MaxCategories
	if maxCats <= 0 {
		maxCats = DefaultMaxCategories
	}
	version := cfg.Version
	if version == "" {
		version = uuid.New().String()
	}

	p := &Profile{
		Version:      version,
		Categories:   fitCategories(records, maxCats),
		AmenityVocab: fitVocabulary(records),
		Bounds:       fitBounds(records),
		Scaler:       make(map[string]Stats, len(NumericFeatures)),
	}
	p.buildIndexes()

	// Phase two: scaler statistics over the numeric vector features.
	samples := make(map[string][]float64, len(NumericFeatures))
	for _, rec := range records {
		d := derive(rec, p)
		appendPresent(samples, FeatureFloorArea, rec.FloorAreaM2)
		appendPresentInt(samples, FeatureNumRooms, rec.NumRooms)
		appendPresentInt(samples, FeatureNumBathrooms, rec.NumBathrooms)
		appendPresent(samples, FeaturePricePerM2, rec.PricePerM2)
		if pti, ok := rec.PTIRatio(); ok {
			samples[FeaturePTIRatio] = append(samples[FeaturePTIRatio], pti)
		}
		samples[FeatureSmartScore] = append(samples[FeatureSmartScore], d.SmartLivingScore)
		samples[FeatureTransportNorm] = append(samples[FeatureTransportNorm], d.TransportNorm)
		samples[FeatureAffordability] = append(samples[FeatureAffordability], d.AffordabilityScore)
	}
	for _, f := range NumericFeatures {
		p.Scaler[f] = meanStd(samples[f])
	}
	return p, nil
}

// fitCategories returns the sorted top-N property types by frequency.
// Frequency ties break by ascending name; the final vocabulary is sorted
// alphabetically so the one-hot layout is deterministic.
func fitCategories(records []property.Record, maxCats int) []string {
	freq := make(map[string]int)
	for _, rec := range records {
		freq[property.NormalizeType(rec.PropertyType)]++
	}
	names := make([]string, 0, len(freq))
	for name := range freq {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if freq[names[i]] != freq[names[j]] {
			return freq[names[i]] > freq[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > maxCats {
		names = names[:maxCats]
	}
	sort.Strings(names)
	return names
}

// fitVocabulary builds the deduplicated, sorted amenity token vocabulary.
func fitVocabulary(records []property.Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, tok := range property.Tokenize(rec.Amenities) {
			seen[tok] = struct{}{}
		}
	}
	vocab := make([]string, 0, len(seen))
	for tok := range seen {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}

// fitBounds computes 1st/99th percentile bounds for the raw signals that
// score normalization consumes. Absent values are excluded; a signal with
// no present values gets a degenerate {0,0} range.
func fitBounds(records []property.Record) map[string]Bounds {
	var transport, pti []float64
	for _, rec := range records {
		if rec.TransportScore != nil {
			transport = append(transport, *rec.TransportScore)
		}
		if v, ok := rec.PTIRatio(); ok {
			pti = append(pti, v)
		}
	}
	return map[string]Bounds{
		FeatureTransportScore: {Lo: Percentile(transport, 1), Hi: Percentile(transport, 99)},
		FeaturePTIRatio:       {Lo: Percentile(pti, 1), Hi: Percentile(pti, 99)},
	}
}

// Percentile computes the q-th percentile (0..100) of values using linear
// interpolation between closest ranks: rank = q/100*(n-1), interpolating
// between the surrounding order statistics. An empty input yields 0.
func Percentile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// meanStd computes population mean and standard deviation. Empty input
// yields {0,0}, which the scaler treats as a degenerate feature.
func meanStd(values []float64) Stats {
	n := float64(len(values))
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return Stats{Mean: mean, Std: math.Sqrt(ss / n)}
}

func appendPresent(samples map[string][]float64, feature string, p *float64) {
	if p != nil {
		samples[feature] = append(samples[feature], *p)
	}
}

func appendPresentInt(samples map[string][]float64, feature string, p *int) {
	if p != nil {
		samples[feature] = append(samples[feature], float64(*p))
	}
}
