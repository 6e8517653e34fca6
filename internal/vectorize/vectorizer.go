// Package vectorize converts property records into fixed-length feature
// vectors under a fitted profile. Vector layout per profile version:
// one-hot property-type block (categories + "other"), bag-of-words amenity
// block, then the scaled numeric block in profile.NumericFeatures order.
package vectorize

import (
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/profile"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
)

// Vector is a feature vector tagged with the profile version it was built
// under. Vectors from different profile generations are not comparable and
// the similarity index rejects them.
type Vector struct {
	Version string    `cbor:"version" json:"version"`
	Values  []float64 `cbor:"values" json:"values"`
}

// Transform builds the feature vector for one record. It is deterministic
// given (record, breakdown, profile): the same inputs always produce
// bit-identical vectors. Unknown property types land in the "other"
// bucket; amenity tokens outside the frozen vocabulary are dropped; absent
// numeric inputs are imputed with the profile's fitted mean before
// scaling (which standardizes them to exactly 0).
func Transform(prof *profile.Profile, rec property.Record, scores scoring.Breakdown) Vector {
	values := make([]float64, prof.VectorLen())

	// One-hot property type.
	values[prof.CategorySlot(property.NormalizeType(rec.PropertyType))] = 1

	// Bag-of-words amenities: token counts within the frozen vocabulary.
	bowOffset := len(prof.Categories) + 1
	for _, tok := range property.Tokenize(rec.Amenities) {
		if slot := prof.VocabSlot(tok); slot >= 0 {
			values[bowOffset+slot]++
		}
	}

	// Scaled numerics.
	numOffset := bowOffset + len(prof.AmenityVocab)
	for i, feature := range profile.NumericFeatures {
		values[numOffset+i] = prof.Scale(feature, numericValue(prof, rec, scores, feature))
	}

	return Vector{Version: prof.Version, Values: values}
}

// numericValue resolves one numeric feature from the record or its score
// breakdown, falling back to the fitted mean when the raw field is absent.
func numericValue(prof *profile.Profile, rec property.Record, scores scoring.Breakdown, feature string) float64 {
	switch feature {
	case profile.FeatureFloorArea:
		return imputed(prof, feature, rec.FloorAreaM2)
	case profile.FeatureNumRooms:
		return imputedInt(prof, feature, rec.NumRooms)
	case profile.FeatureNumBathrooms:
		return imputedInt(prof, feature, rec.NumBathrooms)
	case profile.FeaturePricePerM2:
		return imputed(prof, feature, rec.PricePerM2)
	case profile.FeaturePTIRatio:
		if v, ok := rec.PTIRatio(); ok {
			return v
		}
		return prof.Mean(feature)
	case profile.FeatureSmartScore:
		return scores.SmartLivingScore
	case profile.FeatureTransportNorm:
		return scores.TransportNorm
	case profile.FeatureAffordability:
		return scores.AffordabilityScore
	}
	return 0
}

func imputed(prof *profile.Profile, feature string, p *float64) float64 {
	if p != nil {
		return *p
	}
	return prof.Mean(feature)
}

func imputedInt(prof *profile.Profile, feature string, p *int) float64 {
	if p != nil {
		return float64(*p)
	}
	return prof.Mean(feature)
}
