package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job in logs and history.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression (with seconds field).
	Schedule() string
}

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the most recent executions of one job.
type JobHistory struct {
	Results []JobResult
}

const historyLimit = 100

// AddResult appends a result, keeping at most historyLimit entries.
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// SuccessRate returns the fraction of successful runs, 0 when empty.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results))
}

// LastResult returns the most recent execution, if any.
func (h *JobHistory) LastResult() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}
