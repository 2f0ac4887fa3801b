//go:build wireinject
// +build wireinject

package di

import (
	"SonaCast/pkg/config"
	"SonaCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvideSpotStream,
		ProvideHistoryProvider,
		ProvideModelStore,

		// Forecasting core
		ProvidePriceSource,
		ProvideModelBank,
		ProvideForecaster,
		ProvideRetrainer,
		ProvideRetrainQueue,

		// Tick pipeline use cases
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
