package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Repository persists run snapshots and their ranked output. Persistence
// is optional: the pipeline runs fully without a database, and the
// repository is only constructed when DATABASE_URL is set.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// EnsureSchema creates the ranking tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking_runs (
			id BIGSERIAL PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			latest_month DATE NOT NULL,
			securities INT NOT NULL,
			ranked_months INT NOT NULL,
			skipped_points INT NOT NULL,
			insufficient_history INT NOT NULL,
			config_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ranked_observations (
			run_id BIGINT NOT NULL REFERENCES ranking_runs(id) ON DELETE CASCADE,
			isin TEXT NOT NULL,
			as_of DATE NOT NULL,
			trailing_return DOUBLE PRECISION NOT NULL,
			rank INT NOT NULL,
			PRIMARY KEY (run_id, isin, as_of)
		)`,
		`CREATE TABLE IF NOT EXISTS rank_deltas (
			run_id BIGINT NOT NULL REFERENCES ranking_runs(id) ON DELETE CASCADE,
			isin TEXT NOT NULL,
			as_of DATE NOT NULL,
			trailing_return DOUBLE PRECISION NOT NULL,
			current_rank INT NOT NULL,
			previous_rank INT,
			rank_delta INT,
			PRIMARY KEY (run_id, isin, as_of)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RunRecord is one persisted pipeline execution.
type RunRecord struct {
	ID                  int64
	StartedAt           time.Time
	FinishedAt          time.Time
	LatestMonth         time.Time
	Securities          int
	RankedMonths        int
	SkippedPoints       int
	InsufficientHistory int
	ConfigHash          string
}

// SaveRun inserts a run snapshot and returns its id.
func (r *Repository) SaveRun(ctx context.Context, run RunRecord) (int64, error) {
	query := `
		INSERT INTO ranking_runs
			(started_at, finished_at, latest_month, securities, ranked_months, skipped_points, insufficient_history, config_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		run.StartedAt, run.FinishedAt, run.LatestMonth,
		run.Securities, run.RankedMonths, run.SkippedPoints,
		run.InsufficientHistory, run.ConfigHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// SaveRankings batch-upserts every ranked observation of a run.
func (r *Repository) SaveRankings(ctx context.Context, runID int64, obs []contracts.RankedObservation) error {
	if len(obs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO ranked_observations (run_id, isin, as_of, trailing_return, rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, isin, as_of) DO UPDATE SET
			trailing_return = EXCLUDED.trailing_return,
			rank = EXCLUDED.rank`

	for _, o := range obs {
		batch.Queue(query, runID, o.SecurityID, o.AsOf, o.TrailingReturn, o.Rank)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range obs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save rankings: %w", err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"rows":   len(obs),
	}).Info("Persisted ranked observations")

	return nil
}

// SaveDeltas batch-upserts every rank-delta record of a run. Nil
// previous ranks and deltas are stored as SQL NULL, preserving the
// new-entrant distinction.
func (r *Repository) SaveDeltas(ctx context.Context, runID int64, records []contracts.RankDeltaRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO rank_deltas (run_id, isin, as_of, trailing_return, current_rank, previous_rank, rank_delta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, isin, as_of) DO UPDATE SET
			trailing_return = EXCLUDED.trailing_return,
			current_rank = EXCLUDED.current_rank,
			previous_rank = EXCLUDED.previous_rank,
			rank_delta = EXCLUDED.rank_delta`

	for _, rec := range records {
		batch.Queue(query, runID, rec.SecurityID, rec.AsOf, rec.TrailingReturn,
			rec.CurrentRank, rec.PreviousRank, rec.RankDelta)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save deltas: %w", err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"rows":   len(records),
	}).Info("Persisted rank deltas")

	return nil
}

// LatestRun returns the most recently finished run, or pgx.ErrNoRows
// wrapped when nothing has been persisted yet.
func (r *Repository) LatestRun(ctx context.Context) (*RunRecord, error) {
	query := `
		SELECT id, started_at, finished_at, latest_month, securities, ranked_months,
			skipped_points, insufficient_history, config_hash
		FROM ranking_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`

	var run RunRecord
	err := r.pool.QueryRow(ctx, query).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.LatestMonth,
		&run.Securities, &run.RankedMonths, &run.SkippedPoints,
		&run.InsufficientHistory, &run.ConfigHash,
	)
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

// RankingsForRun reads back a run's ranked observations in month then
// rank order.
func (r *Repository) RankingsForRun(ctx context.Context, runID int64) ([]contracts.RankedObservation, error) {
	query := `
		SELECT isin, as_of, trailing_return, rank
		FROM ranked_observations
		WHERE run_id = $1
		ORDER BY as_of ASC, rank ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("rankings for run: %w", err)
	}
	defer rows.Close()

	var obs []contracts.RankedObservation
	for rows.Next() {
		var o contracts.RankedObservation
		if err := rows.Scan(&o.SecurityID, &o.AsOf, &o.TrailingReturn, &o.Rank); err != nil {
			return nil, fmt.Errorf("scan ranked observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}
