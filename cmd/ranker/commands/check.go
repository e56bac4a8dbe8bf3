package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmehra/niftyrank/internal/loader"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Inspect input data coverage",
	Long: `Reads the price panel and constituent list and reports coverage
without running the engine.

Checked:
- securities and month-end observations in the panel
- overall date range
- securities below the minimum history for a trailing return
- constituents without any price data
- malformed input rows

Example:
  go run ./cmd/ranker check
  go run ./cmd/ranker check --prices data/historical_prices.csv`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	l := loader.New(d.log)

	panel, quality, err := l.LoadPrices(d.cfg.PricesFile)
	if err != nil {
		return err
	}
	cons, err := l.LoadConstituents(d.cfg.ConstituentsFile)
	if err != nil {
		return err
	}

	minHistory := d.engine.ReturnWindow.MinHistory
	short := 0
	minMonths, maxMonths := -1, 0
	for _, id := range panel.SecurityIDs() {
		n := len(panel.Series(id))
		if n < minHistory {
			short++
		}
		if minMonths < 0 || n < minMonths {
			minMonths = n
		}
		if n > maxMonths {
			maxMonths = n
		}
	}
	missing := cons.MissingFrom(panel)

	fmt.Println("=== niftyrank data check ===")
	fmt.Println()
	fmt.Printf("Price panel:      %s\n", d.cfg.PricesFile)
	fmt.Printf("  securities:     %d\n", panel.Securities())
	fmt.Printf("  observations:   %d month-ends\n", panel.Observations())
	if minMonths >= 0 {
		fmt.Printf("  months/security: %d to %d\n", minMonths, maxMonths)
	}
	fmt.Printf("  short history:  %d securities below %d month-ends\n", short, minHistory)
	fmt.Printf("  malformed rows: %d\n", quality.MalformedRows)
	fmt.Println()
	fmt.Printf("Constituents:     %s\n", d.cfg.ConstituentsFile)
	fmt.Printf("  listed:         %d\n", cons.Len())
	fmt.Printf("  without prices: %d\n", len(missing))
	for i, id := range missing {
		if i >= 10 {
			fmt.Printf("    ... and %d more\n", len(missing)-10)
			break
		}
		fmt.Printf("    %s\n", id)
	}
	fmt.Println()

	rankable := panel.Securities() - short
	if rankable == 0 {
		fmt.Println("No security has enough history; a run would produce no rankings.")
	} else {
		fmt.Printf("%d of %d securities can produce trailing returns.\n", rankable, panel.Securities())
	}

	return nil
}
