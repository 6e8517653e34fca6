// Package scoring computes the Housing Quality Score and Smart Living
// Score for a single property record. Compute is pure and deterministic:
// no I/O, no shared state, safe for concurrent use against a published
// profile.
package scoring

import (
	"math"
	"strings"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/profile"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

// Saturation reference counts for the rooms/baths sub-score: the linear
// curve reaches 100 at 3 bedrooms and 2 bathrooms.
const (
	RoomsReference = 3
	BathsReference = 2
)

// Reference floor area in m2 at which the size sub-score saturates.
const SizeReferenceM2 = 120

// HQSPassThreshold is the composite score at or above which a property
// passes the housing quality check.
const HQSPassThreshold = 60

// HQS composite weights.
const (
	weightSize      = 0.30
	weightRooms     = 0.20
	weightCondition = 0.15
	weightClimate   = 0.10
	weightAmenities = 0.15
	weightCrime     = 0.10
)

// Smart Living Score weights.
const (
	weightHQS           = 0.50
	weightTransport     = 0.20
	weightAffordability = 0.20
	weightExtras        = 0.10
)

// Label buckets a smart living score.
type Label string

// Smart rating labels with their thresholds: Excellent >= 80, Good >= 65,
// Fair >= 45, else Poor.
const (
	LabelExcellent Label = "Excellent"
	LabelGood      Label = "Good"
	LabelFair      Label = "Fair"
	LabelPoor      Label = "Poor"
)

// Breakdown is the full per-property scoring result. Every field is in
// [0,100].
type Breakdown struct {
	Size      float64 `json:"size"`
	Rooms     float64 `json:"rooms"`
	Condition float64 `json:"condition"`
	Climate   float64 `json:"climate"`
	Amenities float64 `json:"amenities"`
	Crime     float64 `json:"crime"`

	HQS     float64 `json:"hqs_score"`
	HQSPass bool    `json:"hqs_pass"`

	TransportNorm      float64 `json:"transport_norm"`
	AffordabilityScore float64 `json:"affordability_score"`
	ExtrasScore        float64 `json:"extras_score"`

	SmartLivingScore float64 `json:"smart_living_score"`
	Label            Label   `json:"smart_label"`
}

// Compute derives the score breakdown for one record. The profile supplies
// the corpus-relative percentile bounds for transport and affordability
// normalization. A structurally valid record always scores: a record with
// every optional field absent yields an all-zero breakdown labeled Poor.
func Compute(rec property.Record, prof *profile.Profile) Breakdown {
	b := Breakdown{
		Size:      scoreSize(rec.FloorAreaM2),
		Rooms:     scoreRooms(rec.NumRooms, rec.NumBathrooms),
		Condition: scoreCondition(rec.Condition),
		Climate:   scoreClimate(rec.AirConditioning, rec.Heating),
		Amenities: scoreAmenities(property.Tokenize(rec.Amenities)),
		Crime:     scoreCrime(rec.CrimeRate),
	}

	b.HQS = b.Size*weightSize +
		b.Rooms*weightRooms +
		b.Condition*weightCondition +
		b.Climate*weightClimate +
		b.Amenities*weightAmenities +
		b.Crime*weightCrime
	b.HQSPass = b.HQS >= HQSPassThreshold

	if rec.TransportScore != nil {
		b.TransportNorm = prof.Normalize(profile.FeatureTransportScore, *rec.TransportScore)
	}
	if pti, ok := rec.PTIRatio(); ok {
		// Lower price-to-income is better: invert the normalized ratio.
		b.AffordabilityScore = 100 - prof.Normalize(profile.FeaturePTIRatio, pti)
	}

	b.ExtrasScore = scoreExtras(b.Amenities, rec)

	sls := b.HQS*weightHQS +
		b.TransportNorm*weightTransport +
		b.AffordabilityScore*weightAffordability +
		b.ExtrasScore*weightExtras
	b.SmartLivingScore = clamp(sls, 0, 100)
	b.Label = LabelFor(b.SmartLivingScore)

	return b
}

// LabelFor maps a smart living score to its rating label.
func LabelFor(score float64) Label {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 65:
		return LabelGood
	case score >= 45:
		return LabelFair
	default:
		return LabelPoor
	}
}

func scoreSize(areaM2 *float64) float64 {
	if areaM2 == nil {
		return 0
	}
	return clamp(*areaM2/SizeReferenceM2*100, 0, 100)
}

func scoreRooms(rooms, baths *int) float64 {
	var r, b float64
	if rooms != nil {
		r = clamp(float64(*rooms)/RoomsReference*100, 0, 100)
	}
	if baths != nil {
		b = clamp(float64(*baths)/BathsReference*100, 0, 100)
	}
	return (r + b) / 2
}

func scoreCondition(c property.Condition) float64 {
	switch c {
	case property.ConditionNew:
		return 100
	case property.ConditionRenovated:
		return 85
	case property.ConditionOld:
		return 40
	}
	return 0
}

func scoreClimate(ac, heating bool) float64 {
	switch {
	case ac && heating:
		return 100
	case ac || heating:
		return 80
	}
	return 0
}

// scoreAmenities credits parsed amenity tokens: gym 30, park 30, pool 40,
// capped at 100. Matching is substring on normalized tokens, so
// "swimming_pool" and "carpark" both count.
func scoreAmenities(tokens []string) float64 {
	var gym, park, pool bool
	for _, t := range tokens {
		gym = gym || strings.Contains(t, "gym")
		park = park || strings.Contains(t, "park")
		pool = pool || strings.Contains(t, "pool")
	}
	var score float64
	if gym {
		score += 30
	}
	if park {
		score += 30
	}
	if pool {
		score += 40
	}
	return math.Min(score, 100)
}

func scoreCrime(crimeRate *float64) float64 {
	if crimeRate == nil {
		return 0
	}
	return clamp(100-(*crimeRate/10*100), 0, 100)
}

func scoreExtras(amenities float64, rec property.Record) float64 {
	score := amenities * 0.7
	if rec.HasGym {
		score += 5
	}
	if rec.HasParking {
		score += 5
	}
	if rec.HasPool {
		score += 10
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds a score to two decimals for presentation. Internal math
// keeps full precision; only the serving boundary rounds.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
