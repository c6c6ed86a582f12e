// Package common wires the application's components together for the CLI
// commands. Every command builds the same App and picks the entry points it
// needs.
package common

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nordbil/carcatalog/internal/catalog"
	"github.com/nordbil/carcatalog/internal/config"
	"github.com/nordbil/carcatalog/internal/database"
	"github.com/nordbil/carcatalog/internal/dedup"
	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/frontier"
	"github.com/nordbil/carcatalog/internal/imagestore"
	"github.com/nordbil/carcatalog/internal/ingest"
	"github.com/nordbil/carcatalog/internal/job"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
	"github.com/nordbil/carcatalog/internal/scrape"
)

// schemaTimeout bounds the schema bootstrap on startup.
const schemaTimeout = 30 * time.Second

// App holds the wired application.
type App struct {
	Config       *config.Config
	Logger       logger.Interface
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	Orchestrator *job.Orchestrator
	Listings     *database.ListingRepository
	Frontier     *database.FrontierRepository
	close        func() error
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// NewApp loads configuration and wires every component.
func NewApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if schemaErr := database.EnsureSchema(ctx, db); schemaErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", schemaErr)
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	listings := database.NewListingRepository(db)
	rejections := database.NewRejectionRepository(db)
	frontierRepo := database.NewFrontierRepository(db)

	images, err := buildImageStore(cfg.ImageStore, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	parsers := frontier.NewParserRegistry()
	sources := make([]domain.Source, 0, len(cfg.Sources))
	pipelines := make([]job.SourcePipeline, 0, len(cfg.Sources))

	for _, sc := range cfg.Sources {
		parser, parserErr := sc.Parser.Build()
		if parserErr != nil {
			db.Close()
			return nil, parserErr
		}
		parsers.Register(sc.ID, parser)
		sources = append(sources, sc.Domain())

		discoverer, discErr := scrape.NewSiteDiscoverer(sc.Site, log)
		if discErr != nil {
			db.Close()
			return nil, discErr
		}

		extractor := scrape.NewPageExtractor(sc.Selectors, sc.Site.RequestTimeout, log)
		ingester := ingest.NewIngester(
			extractor, listings, rejections, frontierRepo, cfg.Ingestion.Concurrency, m, log)

		pipelines = append(pipelines, job.SourcePipeline{
			Source:     sc.Domain(),
			Discoverer: discoverer,
			Ingester:   ingester,
		})
	}

	tracker := frontier.NewTracker(listings, rejections, frontierRepo, parsers, log, m)
	sampler := frontier.NewSampler(rand.New(rand.NewSource(time.Now().UnixNano())))
	deleter := catalog.NewDeleter(listings, images, log, m)
	sweeper := catalog.NewSweeper(listings, log, m)
	resolver := dedup.NewResolver(listings, deleter, parsers, sources, log)
	registry := job.NewRegistry(log, m)

	orchestrator := job.NewOrchestrator(
		pipelines,
		tracker,
		sampler,
		frontierRepo,
		sweeper,
		resolver,
		registry,
		cfg.Ingestion.BatchSize,
		cfg.Ingestion.StaleThreshold,
		log,
	)

	return &App{
		Config:       cfg,
		Logger:       log,
		Metrics:      m,
		Registry:     promRegistry,
		Orchestrator: orchestrator,
		Listings:     listings,
		Frontier:     frontierRepo,
		close:        db.Close,
	}, nil
}

// buildImageStore connects to the object store, or falls back to a no-op
// store when none is configured. Listings then keep their image references
// and only the rows are deleted.
func buildImageStore(cfg imagestore.Config, log logger.Interface) (imagestore.Store, error) {
	if cfg.Endpoint == "" {
		log.Warn("No image store configured, image cleanup disabled")
		return imagestore.NewNoOp(), nil
	}

	store, err := imagestore.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect image store: %w", err)
	}

	return store, nil
}
