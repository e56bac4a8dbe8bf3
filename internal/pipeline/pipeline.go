package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/engine/delta"
	"github.com/dmehra/niftyrank/internal/engine/ranking"
	"github.com/dmehra/niftyrank/internal/engine/returns"
	"github.com/dmehra/niftyrank/internal/engineconfig"
	"github.com/dmehra/niftyrank/internal/loader"
	"github.com/dmehra/niftyrank/internal/report"
	"github.com/dmehra/niftyrank/internal/store"
	"github.com/dmehra/niftyrank/internal/universe"
	"github.com/dmehra/niftyrank/pkg/logger"
	"github.com/dmehra/niftyrank/pkg/redis"
)

// Stage names emitted as progress events, in execution order.
const (
	StageLoad    = "load"
	StageReturns = "returns"
	StageRank    = "rank"
	StageDelta   = "delta"
	StageReport  = "report"
	StagePersist = "persist"
	StageDone    = "done"
)

// Event is one progress notification from a running pipeline.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ProgressFunc receives pipeline progress events. It must not block.
type ProgressFunc func(Event)

// Options configures a pipeline run.
type Options struct {
	PricesFile       string
	ConstituentsFile string
	OutputDir        string
	Config           *engineconfig.Config

	// Optional collaborators. Nil disables the corresponding step.
	Store    *store.Repository
	Cache    *redis.Cache
	Progress ProgressFunc
}

// RunResult is the outcome of one full pipeline execution.
type RunResult struct {
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
	LatestMonth  time.Time               `json:"latest_month"`
	Securities   int                     `json:"securities"`
	RankedMonths int                     `json:"ranked_months"`
	Quality      contracts.QualityReport `json:"quality"`
	Artifacts    []string                `json:"artifacts"`
	ConfigHash   string                  `json:"config_hash"`
	RunID        int64                   `json:"run_id,omitempty"`

	// Full engine output, kept for in-process consumers (the API serves
	// from these). Not part of the JSON summary.
	Returns  *contracts.ReturnSet  `json:"-"`
	Rankings *contracts.RankingSet `json:"-"`
	Deltas   *contracts.DeltaSet   `json:"-"`
}

// Pipeline wires the full monthly flow: load inputs, compute trailing
// returns, rank, derive deltas, write reports, and optionally persist.
type Pipeline struct {
	opts   Options
	logger *logger.Logger

	loader  *loader.Loader
	returns *returns.Calculator
	ranker  *ranking.Ranker
	deltas  *delta.Calculator
	writer  *report.Writer
}

// New assembles a pipeline from options. Options.Config must be set.
func New(opts Options, log *logger.Logger) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: engine config is required")
	}
	if err := engineconfig.Validate(opts.Config); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Pipeline{
		opts:    opts,
		logger:  log,
		loader:  loader.New(log),
		returns: returns.NewCalculator(opts.Config, log),
		ranker:  ranking.NewRanker(log),
		deltas:  delta.NewCalculator(log),
		writer:  report.NewWriter(opts.OutputDir, log),
	}, nil
}

// Run executes the pipeline end to end. Recoverable data problems end
// up in RunResult.Quality; a run only fails when no usable output can
// be produced at all.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{StartedAt: time.Now().UTC()}

	hash, err := engineconfig.Hash(p.opts.Config)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}
	result.ConfigHash = hash

	p.emit(StageLoad, "loading input files")
	panel, loadQuality, err := p.loader.LoadPrices(p.opts.PricesFile)
	if err != nil {
		return nil, err
	}
	result.Quality.Merge(loadQuality)

	cons, err := p.loader.LoadConstituents(p.opts.ConstituentsFile)
	if err != nil {
		return nil, err
	}

	missing := cons.MissingFrom(panel)
	result.Quality.MissingConstituents = len(missing)
	if len(missing) > 0 {
		p.logger.WithFields(map[string]interface{}{
			"count": len(missing),
		}).Warn("Constituents without any price history")
	}

	p.emit(StageReturns, "computing trailing 12-month returns")
	returnSet, err := p.returns.Calculate(ctx, panel)
	if err != nil {
		return nil, err
	}
	result.Quality.Merge(returnSet.Quality)
	result.Securities = panel.Securities()

	p.emit(StageRank, "ranking securities per month")
	rankingSet, err := p.ranker.Rank(ctx, returnSet)
	if err != nil {
		return nil, err
	}
	result.RankedMonths = len(rankingSet.Months())

	latest, latestMonth, err := rankingSet.Latest()
	if err != nil {
		// Data loaded but no month produced a single ranked security.
		return nil, fmt.Errorf("no rankable output from %d securities: %w",
			panel.Securities(), err)
	}
	result.LatestMonth = latestMonth

	p.emit(StageDelta, "deriving month-over-month rank deltas")
	deltaSet, err := p.deltas.Calculate(ctx, rankingSet)
	if err != nil {
		return nil, err
	}

	improvers, decliners := delta.ConsistentMovers(deltaSet, p.opts.Config.Movers)

	p.emit(StageReport, "writing report artifacts")
	if err := p.writeReports(result, rankingSet, deltaSet, latest, latestMonth, cons, improvers, decliners); err != nil {
		return nil, err
	}

	if err := p.persist(ctx, result, rankingSet, deltaSet); err != nil {
		return nil, err
	}

	p.cacheLatest(ctx, latest, latestMonth)

	result.Returns = returnSet
	result.Rankings = rankingSet
	result.Deltas = deltaSet
	result.FinishedAt = time.Now().UTC()
	p.emit(StageDone, fmt.Sprintf("run complete for %s", latestMonth.Format("2006-01")))
	p.logSummary(result)

	return result, nil
}

func (p *Pipeline) writeReports(
	result *RunResult,
	rankingSet *contracts.RankingSet,
	deltaSet *contracts.DeltaSet,
	latest []contracts.RankedObservation,
	latestMonth time.Time,
	cons *universe.Constituents,
	improvers, decliners []delta.Mover,
) error {
	path, err := p.writer.WriteLatestRankings(latest, latestMonth, cons)
	if err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, path)

	latestDeltas, _, err := deltaSet.Latest()
	if err != nil {
		return err
	}
	path, err = p.writer.WriteLatestDeltas(latestDeltas, latestMonth, cons)
	if err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, path)

	if p.opts.Config.Reports.Historical {
		path, err = p.writer.WriteHistoricalRankings(rankingSet)
		if err != nil {
			return err
		}
		result.Artifacts = append(result.Artifacts, path)
	}

	summary := report.BuildSummary(rankingSet, deltaSet, improvers, decliners)
	path, err = p.writer.WriteSummary(summary)
	if err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, path)

	path, err = p.writer.WriteSectorSummary(latest, cons)
	if err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, path)

	return nil
}

// persist stores the run snapshot when a repository is configured.
// Persistence failure fails the run: a half-written snapshot is worse
// than none.
func (p *Pipeline) persist(ctx context.Context, result *RunResult, rankingSet *contracts.RankingSet, deltaSet *contracts.DeltaSet) error {
	if p.opts.Store == nil {
		return nil
	}

	p.emit(StagePersist, "persisting run snapshot")

	runID, err := p.opts.Store.SaveRun(ctx, store.RunRecord{
		StartedAt:           result.StartedAt,
		FinishedAt:          time.Now().UTC(),
		LatestMonth:         result.LatestMonth,
		Securities:          result.Securities,
		RankedMonths:        result.RankedMonths,
		SkippedPoints:       result.Quality.SkippedPoints,
		InsufficientHistory: result.Quality.InsufficientHistory,
		ConfigHash:          result.ConfigHash,
	})
	if err != nil {
		return err
	}
	result.RunID = runID

	if err := p.opts.Store.SaveRankings(ctx, runID, rankingSet.Observations); err != nil {
		return err
	}
	return p.opts.Store.SaveDeltas(ctx, runID, deltaSet.Records)
}

// cacheLatest refreshes the latest-rankings cache. Cache trouble is
// logged, never fatal.
func (p *Pipeline) cacheLatest(ctx context.Context, latest []contracts.RankedObservation, month time.Time) {
	if p.opts.Cache == nil {
		return
	}

	payload := map[string]interface{}{
		"month":    month.Format("2006-01"),
		"rankings": latest,
	}
	if err := p.opts.Cache.Set(ctx, "rankings:latest", payload, 24*time.Hour); err != nil {
		p.logger.WithError(err).Warn("Failed to refresh latest-rankings cache")
	}
}

func (p *Pipeline) emit(stage, message string) {
	if p.opts.Progress != nil {
		p.opts.Progress(Event{Stage: stage, Message: message, At: time.Now().UTC()})
	}
}

func (p *Pipeline) logSummary(result *RunResult) {
	fields := map[string]interface{}{
		"latest_month":  result.LatestMonth.Format("2006-01"),
		"securities":    result.Securities,
		"ranked_months": result.RankedMonths,
		"artifacts":     len(result.Artifacts),
		"duration":      result.FinishedAt.Sub(result.StartedAt).String(),
	}
	if result.RunID > 0 {
		fields["run_id"] = result.RunID
	}
	p.logger.WithFields(fields).Info("Pipeline run finished")

	if result.Quality.HasWarnings() {
		p.logger.WithFields(map[string]interface{}{
			"skipped_points":       result.Quality.SkippedPoints,
			"duplicate_points":     result.Quality.DuplicatePoints,
			"malformed_rows":       result.Quality.MalformedRows,
			"insufficient_history": result.Quality.InsufficientHistory,
			"missing_constituents": result.Quality.MissingConstituents,
		}).Warn("Run completed with data-quality warnings")
	}
}
