// Package profile provides the fitted, versioned, immutable vectorization
// profile: category vocabulary, amenity vocabulary, percentile bounds used
// for score normalization, and scaler statistics used for vector scaling.
// A profile is produced once per corpus generation and never mutated;
// rebuilds publish a new profile under a new version tag.
package profile

// Feature names for the per-feature statistics maps. The vector numeric
// block uses NumericFeatures in this exact order; percentile bounds are
// fitted for the raw corpus signals that score normalization needs.
const (
	FeatureFloorArea     = "floor_area_m2"
	FeatureNumRooms      = "num_rooms"
	FeatureNumBathrooms  = "num_bathrooms"
	FeaturePricePerM2    = "price_per_m2"
	FeaturePTIRatio      = "price_to_income_ratio"
	FeatureSmartScore    = "smart_living_score"
	FeatureTransportNorm = "transport_norm"
	FeatureAffordability = "affordability_score"

	FeatureTransportScore = "transport_score"
)

// OtherCategory is the catch-all bucket for property types outside the
// fitted vocabulary.
const OtherCategory = "other"

// NumericFeatures is the ordered list of features in the scaled numeric
// vector block.
var NumericFeatures = []string{
	FeatureFloorArea,
	FeatureNumRooms,
	FeatureNumBathrooms,
	FeaturePricePerM2,
	FeaturePTIRatio,
	FeatureSmartScore,
	FeatureTransportNorm,
	FeatureAffordability,
}

// Bounds holds the 1st/99th percentile bounds for one corpus signal.
type Bounds struct {
	Lo float64 `cbor:"lo" json:"lo"`
	Hi float64 `cbor:"hi" json:"hi"`
}

// Stats holds scaler parameters for one numeric feature.
type Stats struct {
	Mean float64 `cbor:"mean" json:"mean"`
	Std  float64 `cbor:"std" json:"std"`
}

// Profile is the fitted vectorization artifact. All fields are fixed at
// fit time; vectors built under different profile versions are not
// comparable.
type Profile struct {
	// Version is a unique tag for this profile generation.
	Version string `cbor:"version" json:"version"`

	// Categories is the ordered property-type vocabulary. The one-hot
	// block has len(Categories)+1 slots; the last is the "other" bucket.
	Categories []string `cbor:"categories" json:"categories"`

	// AmenityVocab is the ordered bag-of-words vocabulary.
	AmenityVocab []string `cbor:"amenity_vocab" json:"amenity_vocab"`

	// Bounds maps raw corpus signals to their 1st/99th percentile bounds.
	Bounds map[string]Bounds `cbor:"bounds" json:"bounds"`

	// Scaler maps each numeric vector feature to its mean/std.
	Scaler map[string]Stats `cbor:"scaler" json:"scaler"`

	categoryIndex map[string]int
	vocabIndex    map[string]int
}

// VectorLen returns the fixed feature-vector length under this profile:
// one-hot block (categories + other), bag-of-words block, numeric block.
func (p *Profile) VectorLen() int {
	return len(p.Categories) + 1 + len(p.AmenityVocab) + len(NumericFeatures)
}

// CategorySlot returns the one-hot slot for a normalized property type.
// Types outside the fitted vocabulary map to the trailing "other" slot.
func (p *Profile) CategorySlot(normalizedType string) int {
	if i, ok := p.categoryIndex[normalizedType]; ok {
		return i
	}
	return len(p.Categories)
}

// VocabSlot returns the bag-of-words slot for a normalized amenity token,
// or -1 when the token is outside the frozen vocabulary.
func (p *Profile) VocabSlot(token string) int {
	if i, ok := p.vocabIndex[token]; ok {
		return i
	}
	return -1
}

// Normalize maps a raw value onto [0,100] using the fitted bounds for the
// named signal: clamp((x-lo)/(hi-lo)*100, 0, 100). A degenerate range
// (hi == lo) returns the constant midpoint 50. An unknown signal returns 0.
func (p *Profile) Normalize(feature string, x float64) float64 {
	b, ok := p.Bounds[feature]
	if !ok {
		return 0
	}
	if b.Hi == b.Lo {
		return 50
	}
	v := (x - b.Lo) / (b.Hi - b.Lo) * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Scale standardizes a raw value with the fitted mean/std for the named
// feature. A zero std (or unknown feature) scales to 0.
func (p *Profile) Scale(feature string, x float64) float64 {
	s, ok := p.Scaler[feature]
	if !ok || s.Std == 0 {
		return 0
	}
	return (x - s.Mean) / s.Std
}

// Mean returns the fitted mean for the named feature, used as the
// imputation value for absent numeric inputs at transform time.
func (p *Profile) Mean(feature string) float64 {
	return p.Scaler[feature].Mean
}

// Reindex rebuilds the derived lookup maps after external decoding (e.g.
// a profile arriving inside a larger artifact envelope).
func (p *Profile) Reindex() {
	p.buildIndexes()
}

// buildIndexes populates the lookup maps. Called after fitting or
// decoding; the maps are derived state and never serialized.
func (p *Profile) buildIndexes() {
	p.categoryIndex = make(map[string]int, len(p.Categories))
	for i, c := range p.Categories {
		p.categoryIndex[c] = i
	}
	p.vocabIndex = make(map[string]int, len(p.AmenityVocab))
	for i, t := range p.AmenityVocab {
		p.vocabIndex[t] = i
	}
}
