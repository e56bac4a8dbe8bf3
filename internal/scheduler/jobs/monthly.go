package jobs

import (
	"context"
	"fmt"

	"github.com/dmehra/niftyrank/internal/pipeline"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// RunFunc executes one full pipeline run.
type RunFunc func(ctx context.Context) (*pipeline.RunResult, error)

// MonthlyRanking recomputes the full ranking after each month closes.
type MonthlyRanking struct {
	run      RunFunc
	schedule string
	logger   *logger.Logger
}

// NewMonthlyRanking creates the monthly recompute job. The schedule is
// the engine config's cron expression, normally the first of the month
// after prices have settled.
func NewMonthlyRanking(run RunFunc, schedule string, log *logger.Logger) *MonthlyRanking {
	return &MonthlyRanking{
		run:      run,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *MonthlyRanking) Name() string {
	return "monthly_ranking"
}

// Schedule returns the cron schedule expression.
func (j *MonthlyRanking) Schedule() string {
	return j.schedule
}

// Run executes the pipeline once.
func (j *MonthlyRanking) Run(ctx context.Context) error {
	result, err := j.run(ctx)
	if err != nil {
		return fmt.Errorf("monthly ranking run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"latest_month":  result.LatestMonth.Format("2006-01"),
		"securities":    result.Securities,
		"ranked_months": result.RankedMonths,
	}).Info("Monthly ranking refreshed")

	return nil
}
