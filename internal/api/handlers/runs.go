package handlers

import (
	"net/http"

	"github.com/dmehra/niftyrank/internal/store"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// RunHandler serves persisted run snapshots. Only mounted when a
// database is configured.
type RunHandler struct {
	repo   *store.Repository
	logger *logger.Logger
}

// NewRunHandler creates a run-snapshot handler.
func NewRunHandler(repo *store.Repository, log *logger.Logger) *RunHandler {
	return &RunHandler{repo: repo, logger: log}
}

// GetLatestRun returns the most recently persisted run with its ranked
// observations.
// GET /api/runs/latest
func (h *RunHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	run, err := h.repo.LatestRun(ctx)
	if err != nil {
		respondError(w, http.StatusNotFound, "no persisted run found")
		return
	}

	obs, err := h.repo.RankingsForRun(ctx, run.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load persisted rankings")
		respondError(w, http.StatusInternalServerError, "failed to load persisted rankings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run":      run,
		"rankings": obs,
	})
}
