//go:build wireinject
// +build wireinject

package di

import (
	"MarketBoard/pkg/config"
	"MarketBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Cache backends
		ProvideRedisCache,
		ProvideCacheService,
		ProvideSnapshotStore,

		// Presentation services
		ProvideFormatter,
		ProvideI18n,

		// Infrastructure clients
		ProvideMarketFeed,
		ProvideTickStream,
		ProvideClickHouseClient,
		ProvideArchive,
		ProvideKafkaProducer,
		ProvideSnapshotPublisher,
		ProvideArchiveQueue,

		// Use cases
		ProvideViewController,
		ProvideRefresher,
		ProvideTickCollector,

		// HTTP
		ProvideMarketHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
