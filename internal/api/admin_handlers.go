package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/artifact"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/middleware"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/recommend"
)

// RebuildResponse represents the response for the admin rebuild endpoint.
type RebuildResponse struct {
	Status         string `json:"status"`
	ProfileVersion string `json:"profile_version"`
	PropertyCount  int    `json:"property_count"`
	DurationMs     int64  `json:"duration_ms"`
	ArtifactSaved  bool   `json:"artifact_saved"`
}

// AdminHandlers holds dependencies for administrative HTTP handlers.
type AdminHandlers struct {
	service       *recommend.Service
	artifactStore artifact.Store
}

// NewAdminHandlers creates a new AdminHandlers instance. The artifact
// store may be nil; rebuilds then skip persistence.
func NewAdminHandlers(service *recommend.Service, store artifact.Store) *AdminHandlers {
	return &AdminHandlers{service: service, artifactStore: store}
}

// Rebuild handles POST /admin/rebuild - synchronously rebuilds the
// profile, scores and index from the backing store, then persists the
// snapshot artifact when a store is configured.
//
// Serving continues from the previous snapshot while the rebuild runs;
// a failed rebuild leaves the previous snapshot in place.
func (h *AdminHandlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.service.Rebuild(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "manual rebuild failed", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Rebuild failed; previous snapshot still serving")
		return
	}

	saved := false
	if h.artifactStore != nil {
		if err := h.service.SaveArtifact(r.Context(), h.artifactStore); err != nil {
			// Snapshot is live either way; persistence failure only
			// affects the next cold start.
			slog.ErrorContext(r.Context(), "failed to persist snapshot artifact", "error", err)
		} else {
			saved = true
		}
	}

	resp := RebuildResponse{
		Status:        "ok",
		DurationMs:    time.Since(start).Milliseconds(),
		ArtifactSaved: saved,
	}
	if snap := h.service.Snapshot(); snap != nil {
		resp.ProfileVersion = snap.Profile.Version
		resp.PropertyCount = len(snap.Records)
	}

	writeJSON(w, r.Context(), http.StatusOK, resp)
}
