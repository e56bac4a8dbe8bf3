package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmehra/niftyrank/internal/pipeline"
	"github.com/dmehra/niftyrank/internal/scheduler"
	"github.com/dmehra/niftyrank/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduler daemon",
	Long: `Starts the scheduler daemon with the monthly ranking job.

Registered jobs:
- monthly_ranking: recomputes the full ranking on the engine config's
  cron schedule (default: 07:00 on the first of every month)

The scheduler runs until interrupted with Ctrl+C.

Example:
  go run ./cmd/ranker scheduler start`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler",
	RunE:  runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	runner := func(ctx context.Context) (*pipeline.RunResult, error) {
		p, err := pipeline.New(d.pipelineOptions(nil), d.log)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx)
	}

	s := scheduler.New(d.log)
	job := jobs.NewMonthlyRanking(runner, d.engine.Schedule.Cron, d.log)
	if err := s.AddJob(job); err != nil {
		return err
	}

	s.Start()
	defer s.Stop()

	fmt.Printf("Scheduler running, %s scheduled at %q\n", job.Name(), job.Schedule())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\nReceived %s, shutting down\n", sig)

	return nil
}
