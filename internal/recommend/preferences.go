package recommend

import (
	"strings"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/vectorize"
)

// Preferences describes what a user is looking for. The stated targets
// seed a synthetic query vector; the filter fields prune candidates before
// ranking.
type Preferences struct {
	PropertyType string   `json:"property_type,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`

	// Numeric targets for the query vector. Absent targets use the
	// profile's fitted means, i.e. a corpus-average property.
	FloorAreaM2  *float64 `json:"floor_area_m2,omitempty"`
	NumRooms     *int     `json:"num_rooms,omitempty"`
	NumBathrooms *int     `json:"num_bathrooms,omitempty"`
	PricePerM2   *float64 `json:"price_per_m2,omitempty"`

	// Candidate filters, applied after the similarity search.
	Location      string   `json:"location,omitempty"`
	MaxBudget     *float64 `json:"max_budget,omitempty"`
	MinRooms      *int     `json:"min_rooms,omitempty"`
	MinSmartScore *float64 `json:"min_smart_score,omitempty"`
}

// RecommendForPreferences ranks properties against a synthetic query
// vector built from stated preferences, then applies the preference
// filters. Returns at most k entries; fewer when filtering prunes the
// candidate pool.
func (s *Service) RecommendForPreferences(prefs Preferences, k int) ([]ranking.Entry, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	if k <= 0 {
		k = s.cfg.NeighborK
	}

	qvec := s.queryVector(snap, prefs)

	pool := s.cfg.CandidatePool
	if n := snap.Index.Len(); pool > n {
		pool = n
	}
	neighbors, err := snap.Index.QueryVector(qvec, pool)
	if err != nil {
		return nil, err
	}

	filtered := neighbors[:0:0]
	for _, n := range neighbors {
		if s.matchesFilters(snap, n.ID, prefs) {
			filtered = append(filtered, n)
		}
	}
	if s.metrics != nil {
		s.metrics.IncQuery("preferences")
	}
	return ranking.Rank(filtered, snap.Scores, s.weights, k), nil
}

// queryVector assembles the synthetic record and breakdown a preference
// query vectorizes. MinRooms doubles as the room-count target when no
// explicit target is given, and MinSmartScore as the smart-score target,
// mirroring how users state preferences.
func (s *Service) queryVector(snap *Snapshot, prefs Preferences) vectorize.Vector {
	rec := property.Record{
		PropertyType: prefs.PropertyType,
		Amenities:    strings.Join(prefs.Amenities, ","),
		FloorAreaM2:  prefs.FloorAreaM2,
		NumRooms:     prefs.NumRooms,
		NumBathrooms: prefs.NumBathrooms,
		PricePerM2:   prefs.PricePerM2,
	}
	if rec.NumRooms == nil && prefs.MinRooms != nil {
		rec.NumRooms = prefs.MinRooms
	}

	var scores scoring.Breakdown
	if prefs.MinSmartScore != nil {
		scores.SmartLivingScore = *prefs.MinSmartScore
	}
	return vectorize.Transform(snap.Profile, rec, scores)
}

func (s *Service) matchesFilters(snap *Snapshot, id int64, prefs Preferences) bool {
	rec, ok := snap.Records[id]
	if !ok {
		return false
	}
	if prefs.Location != "" && !strings.EqualFold(rec.Location, prefs.Location) {
		return false
	}
	if prefs.MaxBudget != nil {
		if rec.Price == nil || *rec.Price > *prefs.MaxBudget {
			return false
		}
	}
	if prefs.MinRooms != nil {
		if rec.NumRooms == nil || *rec.NumRooms < *prefs.MinRooms {
			return false
		}
	}
	if prefs.MinSmartScore != nil {
		if snap.Scores[id].SmartLivingScore < *prefs.MinSmartScore {
			return false
		}
	}
	return true
}
