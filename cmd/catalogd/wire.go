//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/internal/catalog/service"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/scrapers"
	"github.com/narwhalmedia/catalogd/pkg/config"
	"github.com/narwhalmedia/catalogd/pkg/events"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

func InitializeApp(ctx context.Context, cfg *config.CatalogConfig) (*App, func(), error) {
	wire.Build(
		// Infrastructure
		provideLogger,
		provideDatabase,
		repository.NewGormRepository,
		wire.Bind(new(repository.Repository), new(*repository.GormRepository)),
		provideCache,
		provideEventBus,
		wire.Bind(new(interfaces.EventBus), new(*events.InMemoryEventBus)),
		provideBroker,

		// Collection
		provideScraperRegistry,
		wire.Bind(new(domain.ScraperResolver), new(*scrapers.Registry)),
		provideClassifier,
		provideCollectorService,

		// Enrichment
		provideParser,
		provideFetcher,
		provideControlStore,
		provideCatalogService,
		wire.Bind(new(service.CatalogServiceInterface), new(*service.CatalogService)),
		service.NewEnrichmentService,
		provideBatchHandler,

		wire.Struct(new(App), "*"),
	)

	return nil, nil, nil
}
