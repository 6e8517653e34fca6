package ranking

import (
	"sort"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/simindex"
)

// Weights defines the hybrid blend between content similarity, smart
// living score and affordability.
type Weights struct {
	Similarity    float64 `json:"similarity"`    // Weight for cosine similarity (default: 0.60)
	SmartScore    float64 `json:"smart_score"`   // Weight for smart living score (default: 0.25)
	Affordability float64 `json:"affordability"` // Weight for affordability (default: 0.15)
}

// DefaultWeights returns the default blend configuration.
//
// Formula: hybrid = (similarity * 0.60) + (smart/100 * 0.25) + (affordability/100 * 0.15)
// - Similarity dominates so results stay recognizably "similar"
// - Smart living score rewards overall quality
// - Affordability nudges attainable properties upward
func DefaultWeights() *Weights {
	return &Weights{
		Similarity:    0.60,
		SmartScore:    0.25,
		Affordability: 0.15,
	}
}

// Entry is one ranked recommendation.
type Entry struct {
	ID                 int64   `json:"id"`
	Similarity         float64 `json:"similarity"`
	SmartLivingScore   float64 `json:"smart_living_score"`
	AffordabilityScore float64 `json:"affordability_score"`
	Hybrid             float64 `json:"hybrid_score"`
}

// Rank blends index neighbors with live score breakdowns into the final
// ordering. Neighbors without a breakdown contribute zero quality and
// affordability terms rather than being dropped. Rank never mutates its
// inputs and returns at most k entries; ties in hybrid score break by
// ascending identifier.
func Rank(neighbors []simindex.Neighbor, scores map[int64]scoring.Breakdown, w *Weights, k int) []Entry {
	if w == nil {
		w = DefaultWeights()
	}
	entries := make([]Entry, 0, len(neighbors))
	for _, n := range neighbors {
		e := Entry{ID: n.ID, Similarity: n.Similarity}
		if b, ok := scores[n.ID]; ok {
			e.SmartLivingScore = b.SmartLivingScore
			e.AffordabilityScore = b.AffordabilityScore
		}
		e.Hybrid = clamp01(n.Similarity)*w.Similarity +
			e.SmartLivingScore/100*w.SmartScore +
			e.AffordabilityScore/100*w.Affordability
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hybrid != entries[j].Hybrid {
			return entries[i].Hybrid > entries[j].Hybrid
		}
		return entries[i].ID < entries[j].ID
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// clamp01 normalizes a similarity term to [0, 1]. Cosine similarity over
// standardized numeric features can go negative; a negative similarity
// carries no weight rather than a penalty.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
