package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/universe"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Writer emits the CSV artifacts of a run into one output directory.
// Row order is fixed (rank ascending, months ascending) so repeated
// runs over identical input produce byte-identical files.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{dir: dir, logger: log}
}

const (
	latestRankingsFile     = "latest_rankings.csv"
	rankDeltaFile          = "rank_delta.csv"
	historicalRankingsFile = "historical_rankings.csv"
	summaryFile            = "summary_stats.csv"
	sectorSummaryFile      = "sector_summary.csv"
)

// WriteLatestRankings writes the most recent month's ranking joined
// with reference data.
func (w *Writer) WriteLatestRankings(obs []contracts.RankedObservation, month time.Time, cons *universe.Constituents) (string, error) {
	rows := [][]string{{"rank", "isin", "name", "ticker", "sector", "as_of", "trailing_return"}}

	for _, o := range obs {
		ref, _ := cons.Get(o.SecurityID)
		rows = append(rows, []string{
			strconv.Itoa(o.Rank),
			o.SecurityID,
			ref.Name,
			ref.Ticker,
			ref.Sector,
			o.AsOf.Format("2006-01-02"),
			formatReturn(o.TrailingReturn),
		})
	}

	return w.writeCSV(latestRankingsFile, rows, fmt.Sprintf("latest rankings for %s", month.Format("2006-01")))
}

// WriteLatestDeltas writes the most recent month's rank movement. New
// entrants carry empty previous-rank and delta cells, never zeroes.
func (w *Writer) WriteLatestDeltas(records []contracts.RankDeltaRecord, month time.Time, cons *universe.Constituents) (string, error) {
	rows := [][]string{{"current_rank", "isin", "name", "as_of", "trailing_return", "previous_rank", "rank_delta"}}

	for _, r := range records {
		ref, _ := cons.Get(r.SecurityID)
		rows = append(rows, []string{
			strconv.Itoa(r.CurrentRank),
			r.SecurityID,
			ref.Name,
			r.AsOf.Format("2006-01-02"),
			formatReturn(r.TrailingReturn),
			formatOptionalInt(r.PreviousRank),
			formatOptionalInt(r.RankDelta),
		})
	}

	return w.writeCSV(rankDeltaFile, rows, fmt.Sprintf("rank deltas for %s", month.Format("2006-01")))
}

// WriteHistoricalRankings writes every ranked month. Optional; the file
// grows with the panel.
func (w *Writer) WriteHistoricalRankings(set *contracts.RankingSet) (string, error) {
	rows := [][]string{{"as_of", "rank", "isin", "trailing_return"}}

	for _, month := range set.Months() {
		for _, o := range set.Month(month) {
			rows = append(rows, []string{
				o.AsOf.Format("2006-01-02"),
				strconv.Itoa(o.Rank),
				o.SecurityID,
				formatReturn(o.TrailingReturn),
			})
		}
	}

	return w.writeCSV(historicalRankingsFile, rows, "historical rankings")
}

// WriteSummary writes run-level descriptive statistics.
func (w *Writer) WriteSummary(stats Summary) (string, error) {
	rows := [][]string{{"metric", "value"}}
	for _, row := range stats.Rows() {
		rows = append(rows, row)
	}

	return w.writeCSV(summaryFile, rows, "summary statistics")
}

// WriteSectorSummary writes descriptive statistics of the latest
// month's trailing returns grouped by sector.
func (w *Writer) WriteSectorSummary(obs []contracts.RankedObservation, cons *universe.Constituents) (string, error) {
	rows := [][]string{{"sector", "securities", "mean_return", "median_return", "min_return", "max_return"}}

	for _, s := range sectorStats(obs, cons) {
		rows = append(rows, []string{
			s.Sector,
			strconv.Itoa(s.Count),
			formatReturn(s.Mean),
			formatReturn(s.Median),
			formatReturn(s.Min),
			formatReturn(s.Max),
		})
	}

	return w.writeCSV(sectorSummaryFile, rows, "sector summary")
}

// writeCSV writes rows to a file inside the output directory.
func (w *Writer) writeCSV(name string, rows [][]string, what string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(rows) - 1,
	}).Infof("Wrote %s", what)

	return path, nil
}

func formatReturn(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
