// Package api provides HTTP handlers for the recommendation API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/middleware"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/recommend"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/scoring"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/simindex"
)

// ScoreResponse represents the response for the property score endpoint.
type ScoreResponse struct {
	PropertyID int64             `json:"property_id"`
	Scores     scoring.Breakdown `json:"scores"`
}

// ScoreHandlers holds dependencies for scoring HTTP handlers.
type ScoreHandlers struct {
	service *recommend.Service
}

// NewScoreHandlers creates a new ScoreHandlers instance.
func NewScoreHandlers(service *recommend.Service) *ScoreHandlers {
	return &ScoreHandlers{service: service}
}

// GetScore handles GET /properties/{id}/score - retrieves the score
// breakdown for one property.
func (h *ScoreHandlers) GetScore(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePropertyID(w, r)
	if !ok {
		return
	}

	breakdown, err := h.service.GetScore(id)
	if err != nil {
		writeEngineError(w, r, err, "property score")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, ScoreResponse{
		PropertyID: id,
		Scores:     roundBreakdown(breakdown),
	})
}

// parsePropertyID extracts and validates the {id} path value. Writes the
// error response itself when the value is missing or not a positive integer.
func parsePropertyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Property ID is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Property ID must be a positive integer")
		return 0, false
	}

	return id, true
}

// writeEngineError maps engine errors to HTTP responses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotReady)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeNotReady, "Engine has not published a snapshot yet")
	case errors.Is(err, recommend.ErrNotFound), errors.Is(err, simindex.ErrNotFound):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Property not found")
	case errors.Is(err, simindex.ErrVersionMismatch):
		slog.ErrorContext(r.Context(), "version mismatch serving request", "error", err, "operation", operation)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeVersionMismatch)
		WriteError(w, ctx, http.StatusConflict, ErrCodeVersionMismatch, "Snapshot artifacts disagree on version")
	default:
		slog.ErrorContext(r.Context(), "engine query failed", "error", err, "operation", operation)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to serve "+operation)
	}
}

// roundBreakdown returns a copy with every score rounded to two decimals.
// Rounding happens only at the serving boundary so internal comparisons
// keep full precision.
func roundBreakdown(b scoring.Breakdown) scoring.Breakdown {
	b.Size = scoring.Round2(b.Size)
	b.Rooms = scoring.Round2(b.Rooms)
	b.Condition = scoring.Round2(b.Condition)
	b.Climate = scoring.Round2(b.Climate)
	b.Amenities = scoring.Round2(b.Amenities)
	b.Crime = scoring.Round2(b.Crime)
	b.HQS = scoring.Round2(b.HQS)
	b.TransportNorm = scoring.Round2(b.TransportNorm)
	b.AffordabilityScore = scoring.Round2(b.AffordabilityScore)
	b.ExtrasScore = scoring.Round2(b.ExtrasScore)
	b.SmartLivingScore = scoring.Round2(b.SmartLivingScore)
	return b
}
