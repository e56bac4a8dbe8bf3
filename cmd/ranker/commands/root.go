package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pricesFile       string
	constituentsFile string
	outputDir        string
	engineConfigFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "NIFTY 500 trailing-return ranking engine",
	Long: `niftyrank - monthly rolling-return ranking for NIFTY 500 securities

Computes trailing 12-month returns per security per month-end, ranks the
cross-section each month, and derives month-over-month rank movement.

Usage:
  go run ./cmd/ranker [command]

Examples:
  go run ./cmd/ranker run
  go run ./cmd/ranker run --prices data/historical_prices.csv
  go run ./cmd/ranker check
  go run ./cmd/ranker api
  go run ./cmd/ranker scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags; empty values fall back to the environment config.
	rootCmd.PersistentFlags().StringVar(&pricesFile, "prices", "", "historical price CSV (default from PRICES_FILE)")
	rootCmd.PersistentFlags().StringVar(&constituentsFile, "constituents", "", "constituent list CSV (default from CONSTITUENTS_FILE)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "report output directory (default from OUTPUT_DIR)")
	rootCmd.PersistentFlags().StringVar(&engineConfigFile, "engine-config", "", "engine config YAML (default from ENGINE_CONFIG_FILE)")
}
