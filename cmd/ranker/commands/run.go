package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmehra/niftyrank/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the ranking pipeline once",
	Long: `Runs the full pipeline: load the price panel and constituent list,
compute trailing 12-month returns, rank each month, derive rank deltas,
and write the report CSVs.

With DATABASE_URL set the run snapshot is also persisted.

Example:
  go run ./cmd/ranker run
  go run ./cmd/ranker run --prices data/historical_prices.csv --output output`,
	RunE: runPipeline,
}

var runHistorical bool

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runHistorical, "historical", false, "also write historical_rankings.csv")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if runHistorical {
		d.engine.Reports.Historical = true
	}

	p, err := pipeline.New(d.pipelineOptions(nil), d.log)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Latest month:   %s\n", result.LatestMonth.Format("2006-01"))
	fmt.Printf("Securities:     %d\n", result.Securities)
	fmt.Printf("Ranked months:  %d\n", result.RankedMonths)
	fmt.Printf("Artifacts:      %d files in %s\n", len(result.Artifacts), d.cfg.OutputDir)
	if result.Quality.HasWarnings() {
		fmt.Printf("Warnings:       %d skipped, %d duplicates, %d malformed, %d short history\n",
			result.Quality.SkippedPoints, result.Quality.DuplicatePoints,
			result.Quality.MalformedRows, result.Quality.InsufficientHistory)
	}

	return nil
}
