package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmehra/niftyrank/internal/api"
	"github.com/dmehra/niftyrank/internal/api/handlers"
	"github.com/dmehra/niftyrank/internal/pipeline"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server. The pipeline runs once on startup so the
server comes up with data to serve; POST /api/run recomputes on demand.

Endpoints:
  GET  /health                 - Health check
  GET  /api/rankings/latest    - Latest month's ranking
  GET  /api/rankings/{month}   - One month's ranking (YYYY-MM)
  GET  /api/returns/{month}    - One month's trailing returns
  GET  /api/deltas/latest      - Latest month's rank movement
  GET  /api/deltas/{month}     - One month's rank movement
  GET  /api/status             - Last run summary
  GET  /api/runs/latest        - Persisted snapshot (needs DATABASE_URL)
  POST /api/run                - Trigger a recompute
  GET  /api/stream             - Websocket progress events

Example:
  go run ./cmd/ranker api
  go run ./cmd/ranker api --port 8086`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	stream := api.NewStream(d.log)
	defer stream.Close()

	runner := func(ctx context.Context) (*pipeline.RunResult, error) {
		p, err := pipeline.New(d.pipelineOptions(stream.Broadcast), d.log)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx)
	}

	state := handlers.NewState()

	// Warm up so the server starts with data. A failed warm-up is not
	// fatal: the endpoints report 404 until a triggered run succeeds.
	if result, err := runner(ctx); err != nil {
		d.log.WithError(err).Warn("Initial pipeline run failed, starting empty")
	} else {
		state.Update(result)
	}

	rankings := handlers.NewRankingHandler(state, runner, d.cache, d.log)
	var runs *handlers.RunHandler
	if d.repo != nil {
		runs = handlers.NewRunHandler(d.repo, d.log)
	}
	router := api.NewRouter(rankings, runs, stream, d.log)
	server := api.New(d.cfg, d.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		fmt.Printf("\nReceived %s, shutting down\n", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
