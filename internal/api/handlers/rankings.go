package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmehra/niftyrank/internal/pipeline"
	"github.com/dmehra/niftyrank/pkg/logger"
	"github.com/dmehra/niftyrank/pkg/redis"
)

// RunFunc executes a full pipeline run on demand.
type RunFunc func(ctx context.Context) (*pipeline.RunResult, error)

// RankingHandler serves engine output over HTTP.
type RankingHandler struct {
	state   *State
	runner  RunFunc
	cache   *redis.Cache
	logger  *logger.Logger
	running atomic.Bool
}

// NewRankingHandler creates a ranking handler. cache may be nil.
func NewRankingHandler(state *State, runner RunFunc, cache *redis.Cache, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		state:  state,
		runner: runner,
		cache:  cache,
		logger: log,
	}
}

const monthLayout = "2006-01"

// GetLatestRankings returns the most recent month's ranking.
// GET /api/rankings/latest
func (h *RankingHandler) GetLatestRankings(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached map[string]interface{}
		if hit, err := h.cache.Get(r.Context(), "rankings:latest", &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, ok := h.currentResult(w)
	if !ok {
		return
	}

	obs, month, err := result.Rankings.Latest()
	if err != nil {
		respondError(w, http.StatusNotFound, "no ranked data available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":    month.Format(monthLayout),
		"count":    len(obs),
		"rankings": obs,
	})
}

// GetRankingsByMonth returns one month's ranking.
// GET /api/rankings/{month} with month as YYYY-MM
func (h *RankingHandler) GetRankingsByMonth(w http.ResponseWriter, r *http.Request) {
	result, ok := h.currentResult(w)
	if !ok {
		return
	}

	asOf, ok := h.resolveMonth(w, r, result.Rankings.Months())
	if !ok {
		return
	}

	obs := result.Rankings.Month(asOf)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":    asOf.Format(monthLayout),
		"count":    len(obs),
		"rankings": obs,
	})
}

// GetReturnsByMonth returns one month's trailing returns, unranked.
// GET /api/returns/{month}
func (h *RankingHandler) GetReturnsByMonth(w http.ResponseWriter, r *http.Request) {
	result, ok := h.currentResult(w)
	if !ok {
		return
	}

	asOf, ok := h.resolveMonth(w, r, result.Returns.Months())
	if !ok {
		return
	}

	obs := result.Returns.Month(asOf)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":   asOf.Format(monthLayout),
		"count":   len(obs),
		"returns": obs,
	})
}

// GetLatestDeltas returns the most recent month's rank movement.
// GET /api/deltas/latest
func (h *RankingHandler) GetLatestDeltas(w http.ResponseWriter, r *http.Request) {
	result, ok := h.currentResult(w)
	if !ok {
		return
	}

	records, month, err := result.Deltas.Latest()
	if err != nil {
		respondError(w, http.StatusNotFound, "no ranked data available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":  month.Format(monthLayout),
		"count":  len(records),
		"deltas": records,
	})
}

// GetDeltasByMonth returns one month's rank movement.
// GET /api/deltas/{month}
func (h *RankingHandler) GetDeltasByMonth(w http.ResponseWriter, r *http.Request) {
	result, ok := h.currentResult(w)
	if !ok {
		return
	}

	asOf, ok := h.resolveMonth(w, r, result.Deltas.Months())
	if !ok {
		return
	}

	records := result.Deltas.Month(asOf)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":  asOf.Format(monthLayout),
		"count":  len(records),
		"deltas": records,
	})
}

// GetStatus returns the summary of the last finished run.
// GET /api/status
func (h *RankingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	result := h.state.Latest()
	if result == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"ran": false,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ran":    true,
		"result": result,
	})
}

// TriggerRun executes the pipeline and refreshes the served state.
// POST /api/run
func (h *RankingHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer h.running.Store(false)

	h.logger.Info("Pipeline run triggered via API")

	result, err := h.runner(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Triggered run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.state.Update(result)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// currentResult writes a 404 and returns false when no run has
// completed yet.
func (h *RankingHandler) currentResult(w http.ResponseWriter) (*pipeline.RunResult, bool) {
	result := h.state.Latest()
	if result == nil {
		respondError(w, http.StatusNotFound, "no run has completed yet")
		return nil, false
	}
	return result, true
}

// resolveMonth parses the {month} path variable (YYYY-MM) and matches
// it against the available month-ends.
func (h *RankingHandler) resolveMonth(w http.ResponseWriter, r *http.Request, months []time.Time) (time.Time, bool) {
	raw := mux.Vars(r)["month"]
	want, err := time.Parse(monthLayout, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
		return time.Time{}, false
	}

	for _, m := range months {
		if m.Year() == want.Year() && m.Month() == want.Month() {
			return m, true
		}
	}

	respondError(w, http.StatusNotFound, "no data for month "+raw)
	return time.Time{}, false
}
