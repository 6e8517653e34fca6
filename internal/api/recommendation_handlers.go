package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/cache"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/middleware"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/recommend"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
)

// maxNeighborK caps the k query parameter to keep result payloads bounded.
const maxNeighborK = 100

// RecommendationResponse represents the response for both recommendation
// endpoints.
type RecommendationResponse struct {
	PropertyID      int64           `json:"property_id,omitempty"`
	Recommendations []ranking.Entry `json:"recommendations"`
	Count           int             `json:"count"`
	Cached          bool            `json:"cached"`
}

// RecommendationHandlers holds dependencies for recommendation HTTP handlers.
type RecommendationHandlers struct {
	service *recommend.Service
	cache   *cache.RecommendationCache
}

// NewRecommendationHandlers creates a new RecommendationHandlers instance.
// The cache may be nil; lookups then always miss.
func NewRecommendationHandlers(service *recommend.Service, c *cache.RecommendationCache) *RecommendationHandlers {
	return &RecommendationHandlers{service: service, cache: c}
}

// GetSimilar handles GET /properties/{id}/similar?k=N - retrieves the
// top-k most similar properties ranked by the hybrid blend.
func (h *RecommendationHandlers) GetSimilar(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePropertyID(w, r)
	if !ok {
		return
	}
	k, ok := parseK(w, r)
	if !ok {
		return
	}

	key := similarCacheKey(h.service, id, k)
	if entries, hit := h.cache.Get(r.Context(), key); hit {
		writeJSON(w, r.Context(), http.StatusOK, RecommendationResponse{
			PropertyID:      id,
			Recommendations: roundEntries(entries),
			Count:           len(entries),
			Cached:          true,
		})
		return
	}

	entries, err := h.service.RecommendSimilar(id, k)
	if err != nil {
		writeEngineError(w, r, err, "similar properties")
		return
	}
	h.cache.Set(r.Context(), key, entries)

	writeJSON(w, r.Context(), http.StatusOK, RecommendationResponse{
		PropertyID:      id,
		Recommendations: roundEntries(entries),
		Count:           len(entries),
	})
}

// PostPreferences handles POST /recommendations/preferences - ranks
// properties against stated preferences.
func (h *RecommendationHandlers) PostPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs recommend.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if err := validatePreferences(prefs); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	k, ok := parseK(w, r)
	if !ok {
		return
	}

	key := preferencesCacheKey(h.service, prefs, k)
	if entries, hit := h.cache.Get(r.Context(), key); hit {
		writeJSON(w, r.Context(), http.StatusOK, RecommendationResponse{
			Recommendations: roundEntries(entries),
			Count:           len(entries),
			Cached:          true,
		})
		return
	}

	entries, err := h.service.RecommendForPreferences(prefs, k)
	if err != nil {
		writeEngineError(w, r, err, "preference recommendations")
		return
	}
	h.cache.Set(r.Context(), key, entries)

	writeJSON(w, r.Context(), http.StatusOK, RecommendationResponse{
		Recommendations: roundEntries(entries),
		Count:           len(entries),
	})
}

// parseK reads the optional k query parameter. Zero means "use the engine
// default". Writes the error response itself on invalid input.
func parseK(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return 0, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k <= 0 || k > maxNeighborK {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("k must be an integer between 1 and %d", maxNeighborK))
		return 0, false
	}
	return k, true
}

func validatePreferences(prefs recommend.Preferences) error {
	if prefs.FloorAreaM2 != nil && *prefs.FloorAreaM2 < 0 {
		return fmt.Errorf("floor_area_m2 must be non-negative")
	}
	if prefs.NumRooms != nil && *prefs.NumRooms < 0 {
		return fmt.Errorf("num_rooms must be non-negative")
	}
	if prefs.NumBathrooms != nil && *prefs.NumBathrooms < 0 {
		return fmt.Errorf("num_bathrooms must be non-negative")
	}
	if prefs.PricePerM2 != nil && *prefs.PricePerM2 < 0 {
		return fmt.Errorf("price_per_m2 must be non-negative")
	}
	if prefs.MaxBudget != nil && *prefs.MaxBudget <= 0 {
		return fmt.Errorf("max_budget must be positive")
	}
	if prefs.MinRooms != nil && *prefs.MinRooms < 0 {
		return fmt.Errorf("min_rooms must be non-negative")
	}
	if prefs.MinSmartScore != nil && (*prefs.MinSmartScore < 0 || *prefs.MinSmartScore > 100) {
		return fmt.Errorf("min_smart_score must be between 0 and 100")
	}
	return nil
}

// similarCacheKey builds a cache key scoped to the current profile version
// so stale generations never serve.
func similarCacheKey(s *recommend.Service, id int64, k int) string {
	version := ""
	if snap := s.Snapshot(); snap != nil {
		version = snap.Profile.Version
	}
	return cache.Key(version, "similar", fmt.Sprintf("%d:%d", id, k))
}

func preferencesCacheKey(s *recommend.Service, prefs recommend.Preferences, k int) string {
	version := ""
	if snap := s.Snapshot(); snap != nil {
		version = snap.Profile.Version
	}
	// Marshal is deterministic for a fixed struct layout, so equal
	// preference payloads share a key.
	body, err := json.Marshal(prefs)
	if err != nil {
		body = []byte("?")
	}
	return cache.Key(version, "preferences", fmt.Sprintf("%s:%d", body, k))
}

// roundEntries rounds scores to two decimals for presentation.
func roundEntries(entries []ranking.Entry) []ranking.Entry {
	out := make([]ranking.Entry, len(entries))
	for i, e := range entries {
		e.Similarity = scoring.Round2(e.Similarity)
		e.SmartLivingScore = scoring.Round2(e.SmartLivingScore)
		e.AffordabilityScore = scoring.Round2(e.AffordabilityScore)
		e.Hybrid = scoring.Round2(e.Hybrid)
		out[i] = e
	}
	return out
}
