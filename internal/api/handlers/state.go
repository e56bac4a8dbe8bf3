package handlers

import (
	"sync"

	"github.com/dmehra/niftyrank/internal/pipeline"
)

// State holds the most recent pipeline result for the API to serve.
// Handlers read under a shared lock; a finished run swaps the whole
// result in one step so readers never see a half-updated view.
type State struct {
	mu     sync.RWMutex
	latest *pipeline.RunResult
}

// NewState creates an empty state.
func NewState() *State {
	return &State{}
}

// Update replaces the served result.
func (s *State) Update(result *pipeline.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Latest returns the current result, or nil when no run has finished.
func (s *State) Latest() *pipeline.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
