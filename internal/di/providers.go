package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	dmodels "SonaCast/internal/domain/models"
	"SonaCast/internal/domain/repository"
	"SonaCast/internal/handler/api"
	mid "SonaCast/internal/middleware"
	internalrepo "SonaCast/internal/repository"
	icache "SonaCast/internal/service/cache"
	"SonaCast/internal/service/spotstream"
	"SonaCast/internal/service/yahoo"
	"SonaCast/internal/services/modelbank"
	"SonaCast/internal/services/pricing"
	"SonaCast/internal/usecase"
	pkgcache "SonaCast/pkg/cache"
	pkgch "SonaCast/pkg/clickhouse"
	"SonaCast/pkg/config"
	pkgkafka "SonaCast/pkg/kafka"
	applogger "SonaCast/pkg/logger"
	"SonaCast/pkg/metrics"
	"SonaCast/pkg/queue"
	"SonaCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "sonacast"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		internalrepo.SpotTicksDDL(db + ".spot_ticks"),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTickStorage creates the ClickHouse tick storage repository.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.TickStorage {
	table := cfg.History.TicksTable
	if table == "" {
		table = cfg.ClickHouse.Database + ".spot_ticks"
	}
	return internalrepo.NewCHTickStorage(chClient.DB(), table)
}

// ProvideTickPublisher creates the Kafka tick publisher repository.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers the handler for the ticks topic.
func ProvideKafkaTicksHandler(store repository.TickStorage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideSpotStream creates the spot quote WebSocket stream.
func ProvideSpotStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return spotstream.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideHistoryProvider selects the source of daily closes. The FX rate
// always comes from the remote chart API, even when closes come from
// ClickHouse ticks.
func ProvideHistoryProvider(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) repository.HistoryProvider {
	remote := yahoo.New(yahoo.Config{
		BaseURL:      cfg.History.BaseURL,
		Timeout:      cfg.History.Timeout,
		GoldSymbol:   cfg.History.GoldSymbol,
		SilverSymbol: cfg.History.SilverSymbol,
		RateSymbol:   cfg.History.RateSymbol,
	})
	if cfg.History.Backend != "clickhouse" {
		return remote
	}
	table := cfg.History.TicksTable
	if table == "" {
		table = cfg.ClickHouse.Database + ".spot_ticks"
	}
	store := internalrepo.NewCHSeriesStore(chClient, table)
	store.SetLogger(l)
	symbols := map[dmodels.Metal]string{dmodels.Gold: "XAU", dmodels.Silver: "XAG"}
	if len(cfg.Stream.Symbols) > 0 {
		symbols[dmodels.Gold] = cfg.Stream.Symbols[0]
	}
	if len(cfg.Stream.Symbols) > 1 {
		symbols[dmodels.Silver] = cfg.Stream.Symbols[1]
	}
	return internalrepo.NewStoreHistoryProvider(store, remote, symbols)
}

// ProvidePriceSource creates the normalized retail price source. With Redis
// configured the FX rate cache moves there, so replicas share one rate.
func ProvidePriceSource(provider repository.HistoryProvider, rdb *redis.Client, l *applogger.Logger) *pricing.Source {
	src := pricing.NewSource(provider, l)
	if rdb != nil {
		src.SetRateCache(pkgcache.NewRedisCacheFromClient(rdb), 15*time.Minute)
	}
	return src
}

// ProvideModelStore creates the filesystem model artifact store.
func ProvideModelStore(cfg *config.Config) repository.ModelStore {
	return internalrepo.NewFSModelStore(cfg.Models.Dir)
}

// ProvideModelBank creates the trainer and the model head bank.
func ProvideModelBank(src *pricing.Source, store repository.ModelStore, cfg *config.Config, l *applogger.Logger) *modelbank.Bank {
	tc := modelbank.DefaultTrainerConfig()
	if cfg.Models.TrainWindowDays > 0 {
		tc.WindowDays = cfg.Models.TrainWindowDays
	}
	if cfg.Models.MinRows > 0 {
		tc.MinRows = cfg.Models.MinRows
	}
	trainer := modelbank.NewTrainer(src, tc, l)
	return modelbank.NewBank(store, trainer, l)
}

// ProvideForecaster creates the forecast use case.
func ProvideForecaster(src *pricing.Source, bank *modelbank.Bank) *usecase.Forecaster {
	return usecase.NewForecaster(src, bank)
}

// ProvideRedisClient creates a shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Forecast.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Forecast.Redis.Addr,
		Password: cfg.Forecast.Redis.Password,
		DB:       cfg.Forecast.Redis.DB,
	})
}

// ProvideRetrainer creates the retrain use case. Without Redis the queue is
// nil and only synchronous retraining works.
func ProvideRetrainer(bank *modelbank.Bank, rdb *redis.Client, cfg *config.Config, l *applogger.Logger) *usecase.Retrainer {
	var q queue.QueueService
	if rdb != nil && cfg.Forecast.Queue.Enabled {
		q = queue.NewRedisPublisher(l, rdb)
	}
	return usecase.NewRetrainer(bank, q, l)
}

// ProvideRetrainQueue creates the consumer side of the retrain queue.
func ProvideRetrainQueue(retrainer *usecase.Retrainer, rdb *redis.Client, cfg *config.Config, l *applogger.Logger) *queue.RedisQueue {
	if rdb == nil || !cfg.Forecast.Queue.Enabled {
		return nil
	}
	qc := &queue.QueueConfig{
		Workers:    cfg.Forecast.Queue.Workers,
		QueueSize:  cfg.Forecast.Queue.QueueSize,
		RetryLimit: cfg.Forecast.Queue.RetryLimit,
		RetryDelay: cfg.Forecast.Queue.RetryDelay,
	}
	job := usecase.NewRetrainJob(retrainer, l)
	return queue.NewRedisConsumer(l, qc, rdb, []queue.Job{job})
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	store repository.TickStorage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(pub, store, metrics, cfg.Backend.Type)
}

// ProvideTickCollector creates the tick collector, or nil when the stream is off.
func ProvideTickCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	metrics repository.Metrics,
) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	// Middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(1000),
	)
	return usecase.NewTickCollector(stream, processor, metrics, pipe)
}

// ProvideHTTPHandler creates the forecast API handler.
func ProvideHTTPHandler(
	forecaster *usecase.Forecaster,
	retrainer *usecase.Retrainer,
	rdb *redis.Client,
	chClient *pkgch.Client,
	cfg *config.Config,
	l *applogger.Logger,
) *api.ForecastEchoHandler {
	h := api.NewForecastEchoHandler(l, forecaster, retrainer)
	if rdb != nil {
		h.SetCache(icache.NewRedisCacheFromClient(rdb))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	h.SetHealthProbe(func(c echo.Context) map[string]string {
		st := map[string]string{}
		if chClient != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := chClient.DB().PingContext(ctx); err != nil {
				st["clickhouse"] = "down"
			} else {
				st["clickhouse"] = "ok"
			}
		}
		return st
	})
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	handler *api.ForecastEchoHandler,
	jobQueue *queue.RedisQueue,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if jobQueue != nil {
		app.SetJobQueue(jobQueue)
	}
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
