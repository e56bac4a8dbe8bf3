package commands

import (
	"context"
	"fmt"

	"github.com/dmehra/niftyrank/internal/engineconfig"
	"github.com/dmehra/niftyrank/internal/pipeline"
	"github.com/dmehra/niftyrank/internal/store"
	"github.com/dmehra/niftyrank/pkg/config"
	"github.com/dmehra/niftyrank/pkg/database"
	"github.com/dmehra/niftyrank/pkg/logger"
	"github.com/dmehra/niftyrank/pkg/redis"
)

// deps bundles the shared wiring of every command: configuration,
// logging, the engine config, and the optional database and cache.
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	engine *engineconfig.Config

	db    *database.DB
	repo  *store.Repository
	redis *redis.Client
	cache *redis.Cache
}

// initDeps loads configuration, applies flag overrides, and connects
// the optional backends. Database and cache stay nil when unconfigured.
func initDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if pricesFile != "" {
		cfg.PricesFile = pricesFile
	}
	if constituentsFile != "" {
		cfg.ConstituentsFile = constituentsFile
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if engineConfigFile != "" {
		cfg.EngineConfigFile = engineConfigFile
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Env:    cfg.Env,
	})

	engine, err := engineconfig.LoadOrDefault(cfg.EngineConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	d := &deps{cfg: cfg, log: log, engine: engine}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.repo = store.NewRepository(db.Pool, log)

		if err := d.repo.EnsureSchema(ctx); err != nil {
			d.close()
			return nil, err
		}
		log.Info("Connected to database")
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache")
		} else {
			d.redis = client
			d.cache = redis.NewCache(client, "niftyrank")
			log.Info("Connected to Redis")
		}
	}

	return d, nil
}

// pipelineOptions builds run options from the wired dependencies.
func (d *deps) pipelineOptions(progress pipeline.ProgressFunc) pipeline.Options {
	return pipeline.Options{
		PricesFile:       d.cfg.PricesFile,
		ConstituentsFile: d.cfg.ConstituentsFile,
		OutputDir:        d.cfg.OutputDir,
		Config:           d.engine,
		Store:            d.repo,
		Cache:            d.cache,
		Progress:         progress,
	}
}

func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}
