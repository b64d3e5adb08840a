package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/handler"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/internal/catalog/service"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/adapters/external/omdb"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/adapters/external/tmdb"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/cache"
	infraevents "github.com/narwhalmedia/catalogd/internal/infrastructure/events"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/events/kafka"
	natsevents "github.com/narwhalmedia/catalogd/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/scrapers"
	"github.com/narwhalmedia/catalogd/pkg/config"
	"github.com/narwhalmedia/catalogd/pkg/database"
	"github.com/narwhalmedia/catalogd/pkg/events"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
	"github.com/narwhalmedia/catalogd/pkg/logger"
	"github.com/narwhalmedia/catalogd/pkg/utils"
)

// App holds everything a command needs.
type App struct {
	Config       *config.CatalogConfig
	Logger       interfaces.Logger
	DB           *gorm.DB
	Repo         repository.Repository
	Control      *service.ControlStore
	Scrapers     *scrapers.Registry
	Collector    *service.CollectorService
	Enrichment   *service.EnrichmentService
	Bus          *events.InMemoryEventBus
	Broker       infraevents.Broker
	BatchHandler *handler.BatchCollectedHandler
}

// forwardedEvents leave the process when an events driver other than memory is set.
var forwardedEvents = []string{
	domain.EventCatalogEntryUpserted,
	domain.EventBatchEnriched,
}

func provideLogger(cfg *config.CatalogConfig) (interfaces.Logger, func(), error) {
	zl, err := logger.NewFromConfig(cfg.Logger.ToLoggerConfig(cfg.Service))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zl, func() { _ = zl.Sync() }, nil
}

func provideDatabase(cfg *config.CatalogConfig, log interfaces.Logger) (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.Database.ToDatabaseConfig())
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Failed to close database", interfaces.Error(err))
			}
		}
	}
	return db, cleanup, nil
}

func provideCache(ctx context.Context, cfg *config.CatalogConfig) (interfaces.Cache, func(), error) {
	if cfg.Enrichment.CacheDriver == "redis" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, cfg.Service.Name+":"), func() { _ = client.Close() }, nil
	}

	mem := utils.NewInMemoryCache(time.Minute)
	return mem, func() { _ = mem.Close() }, nil
}

func provideControlStore(c interfaces.Cache, cfg *config.CatalogConfig) *service.ControlStore {
	return service.NewControlStore(c, cfg.Enrichment.RateCounterTTL)
}

func provideEventBus(log interfaces.Logger) (*events.InMemoryEventBus, func()) {
	bus := events.NewInMemoryEventBus(log)
	return bus, func() { _ = bus.Stop() }
}

func provideParser(cfg *config.CatalogConfig) *domain.FilenameParser {
	return domain.NewFilenameParser(domain.WithScoreTable(domain.ScoreTable{
		Quality:     cfg.Parser.QualityScores,
		SourceBonus: cfg.Parser.SourceBonus,
	}))
}

func provideClassifier(cfg *config.CatalogConfig) *domain.FileClassifier {
	return domain.NewFileClassifier(
		cfg.Collector.ValidExtensions,
		cfg.Collector.SubtitleExtensions,
		cfg.Matching.FuzzyThreshold,
	)
}

// provideFetcher chains TMDb then OMDb. A provider without an API key is left out.
func provideFetcher(cfg *config.CatalogConfig, log interfaces.Logger) *domain.MetadataFetcher {
	fetcher := domain.NewMetadataFetcher(log)

	if t := cfg.Metadata.TMDb; t.APIKey != "" {
		fetcher.RegisterProvider(tmdb.NewClient(tmdb.Config{
			APIKey:       t.APIKey,
			BaseURL:      t.BaseURL,
			ImageBaseURL: t.ImageBaseURL,
			Language:     t.Language,
			Timeout:      t.Timeout,
			MaxRetries:   t.MaxRetries,
			RetryDelay:   t.RetryDelay,
		}, nil, tmdb.SharedLimiter(t.RateLimit), log))
	}

	if o := cfg.Metadata.OMDb; o.APIKey != "" {
		fetcher.RegisterProvider(omdb.NewClient(omdb.Config{
			APIKey:  o.APIKey,
			BaseURL: o.BaseURL,
			Timeout: o.Timeout,
		}, nil, log))
	}

	if len(fetcher.Providers()) == 0 {
		log.Warn("No metadata provider configured, every entry will end unmatched")
	}
	return fetcher
}

func provideScraperRegistry(cfg *config.CatalogConfig, log interfaces.Logger) *scrapers.Registry {
	return scrapers.NewDefaultRegistry(scrapers.Options{
		HTTPClient: &http.Client{Timeout: cfg.Collector.HTTPTimeout},
		S3Client:   scrapers.NewS3Client,
		Fs:         afero.NewOsFs(),
		Logger:     log,
	})
}

func provideCatalogService(
	repo repository.Repository,
	bus interfaces.EventBus,
	cfg *config.CatalogConfig,
	log interfaces.Logger,
) *service.CatalogService {
	return service.NewCatalogService(repo, bus, cfg.Matching.ConfidenceThreshold, log)
}

func provideCollectorService(
	repo repository.Repository,
	resolver domain.ScraperResolver,
	classifier *domain.FileClassifier,
	bus interfaces.EventBus,
	cfg *config.CatalogConfig,
	log interfaces.Logger,
) *service.CollectorService {
	return service.NewCollectorService(repo, resolver, classifier, bus, service.CollectorOptions{
		InsertChunkSize:    cfg.Collector.InsertChunkSize,
		MaxConcurrentScans: cfg.Collector.MaxConcurrentScans,
	}, log)
}

// provideBroker connects the configured events driver and forwards catalog
// events to it. The memory driver forwards nothing and returns a nil broker.
func provideBroker(
	ctx context.Context,
	cfg *config.CatalogConfig,
	bus *events.InMemoryEventBus,
	log interfaces.Logger,
) (infraevents.Broker, func(), error) {
	ev := cfg.Events

	var broker infraevents.Broker
	switch ev.Driver {
	case "nats":
		client, closeConn, err := natsevents.NewClient(ctx, natsevents.Config{
			URL:        ev.NATSURL,
			ClientID:   ev.ClientID,
			StreamName: ev.StreamName,
			Subjects:   []string{ev.TopicPrefix + ".>"},
		}, log)
		if err != nil {
			return nil, nil, err
		}
		broker = natsevents.NewPublisher(client.JetStream(), closeConn, log)
	case "kafka":
		p, err := kafka.NewPublisher(ev.Brokers, ev.ClientID)
		if err != nil {
			return nil, nil, err
		}
		broker = p
	default:
		return nil, func() {}, nil
	}

	if err := infraevents.RegisterForwarders(bus, broker, ev.TopicPrefix, log, forwardedEvents...); err != nil {
		_ = broker.Close()
		return nil, nil, err
	}

	cleanup := func() {
		// Pending forwards must land before the connection goes away.
		_ = bus.Stop()
		if err := broker.Close(); err != nil {
			log.Warn("Failed to close event broker", interfaces.Error(err))
		}
	}
	return broker, cleanup, nil
}

// provideBatchHandler subscribes enrichment to freshly collected batches.
func provideBatchHandler(
	bus *events.InMemoryEventBus,
	enrichment *service.EnrichmentService,
	cfg *config.CatalogConfig,
	log interfaces.Logger,
) (*handler.BatchCollectedHandler, error) {
	h := handler.NewBatchCollectedHandler(enrichment, cfg.Enrichment.BatchTimeout, log)
	if err := bus.Subscribe(h.EventType(), h); err != nil {
		return nil, err
	}
	return h, nil
}
