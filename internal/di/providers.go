package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"MarketBoard/internal/domain/repository"
	"MarketBoard/internal/handler/api"
	mid "MarketBoard/internal/middleware"
	internalrepo "MarketBoard/internal/repository"
	"MarketBoard/internal/service/bvc"
	svccache "MarketBoard/internal/service/cache"
	"MarketBoard/internal/service/i18n"
	"MarketBoard/internal/service/marketclock"
	"MarketBoard/internal/usecase"
	pkgcache "MarketBoard/pkg/cache"
	pkgch "MarketBoard/pkg/clickhouse"
	"MarketBoard/pkg/config"
	"MarketBoard/pkg/format"
	xhttp "MarketBoard/pkg/http"
	pkgkafka "MarketBoard/pkg/kafka"
	applogger "MarketBoard/pkg/logger"
	"MarketBoard/pkg/metrics"
	"MarketBoard/pkg/queue"
	"MarketBoard/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClock creates the exchange calendar clock.
func ProvideClock(cfg *config.Config) (*marketclock.Clock, error) {
	return marketclock.New(cfg.Market.Timezone, cfg.Market.PreOpenStart, cfg.Market.PreOpenEnd)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the Redis cache backend when the configured
// mode needs one.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if cfg.Cache.Mode != "redis" && cfg.Cache.Mode != "layered" {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
}

// ProvideCacheService selects the cache backend per configuration.
func ProvideCacheService(cfg *config.Config, redisCache *pkgcache.RedisCache) pkgcache.Service {
	switch cfg.Cache.Mode {
	case "redis":
		return redisCache
	case "layered":
		return pkgcache.NewLayeredCache(redisCache)
	default:
		return pkgcache.NewMemoryCache()
	}
}

// ProvideSnapshotStore creates the snapshot cache with pre-open invalidation.
func ProvideSnapshotStore(
	cache pkgcache.Service,
	clock *marketclock.Clock,
	m repository.Metrics,
	cfg *config.Config,
) repository.SnapshotStore {
	return svccache.NewSnapshotCache(cache, clock, m, cfg.Cache.SnapshotTTL)
}

// ProvideFormatter creates the locale formatter.
func ProvideFormatter(cfg *config.Config) (*format.Formatter, error) {
	return format.New(cfg.Locale.Tag, cfg.Locale.Currency)
}

// ProvideI18n creates the translation service.
func ProvideI18n(cfg *config.Config, cache pkgcache.Service) (*i18n.Service, error) {
	return i18n.New(cfg.I18n.Default, cache)
}

// ProvideMarketFeed creates the upstream market endpoint client.
func ProvideMarketFeed(cfg *config.Config) repository.MarketFeed {
	return bvc.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout)
}

// ProvideTickStream creates the live exchange stream when enabled.
func ProvideTickStream(cfg *config.Config) repository.TickStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return bvc.NewStream(cfg.Stream.URL, cfg.Stream.ReconnectDelay, cfg.Stream.PingInterval)
}

// ProvideClickHouseClient creates a ClickHouse client when the archive is
// enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + table + " (" +
			"event_id String, symbol String, ts DateTime, price Float64, " +
			"abs_variation Float64, rel_variation Float64, volume Int64, amount Float64" +
			") ENGINE=ReplacingMergeTree ORDER BY (symbol, ts, event_id)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideArchive creates the ClickHouse archive repository.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config) repository.Archive {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseArchive(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideKafkaProducer creates a Kafka producer when publishing is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
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

// ProvideSnapshotPublisher creates the Kafka snapshot publisher.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SnapshotPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
}

// ProvideArchiveQueue creates the Redis-backed archive job queue. It needs
// both a Redis client and an enabled archive; otherwise archive writes stay
// inline.
func ProvideArchiveQueue(
	log *applogger.Logger,
	redisCache *pkgcache.RedisCache,
	archive repository.Archive,
) *queue.RedisQueue {
	if redisCache == nil || archive == nil {
		return nil
	}
	return queue.NewRedisConsumer(log,
		&queue.QueueConfig{Workers: 2, RetryLimit: 3, RetryDelay: 5 * time.Second},
		redisCache.Client(),
		[]queue.Job{internalrepo.NewArchiveJob(archive)},
	)
}

// ProvideViewController creates the selection state controller.
func ProvideViewController(clock *marketclock.Clock, cfg *config.Config) *usecase.ViewController {
	return usecase.NewViewController(clock.Location(), cfg.Cache.ViewTTL)
}

// ProvideRefresher creates the polling refresh pipeline.
func ProvideRefresher(
	feed repository.MarketFeed,
	store repository.SnapshotStore,
	archive repository.Archive,
	publisher repository.SnapshotPublisher,
	m repository.Metrics,
	controller *usecase.ViewController,
	log *applogger.Logger,
	archiveQueue *queue.RedisQueue,
	cfg *config.Config,
) *usecase.Refresher {
	r := usecase.NewRefresher(feed, store, archive, publisher, m, controller, log,
		cfg.Feed.PollInterval, cfg.Feed.Debounce)
	if archiveQueue != nil {
		r.UseArchiveQueue(archiveQueue)
	}
	return r
}

// ProvideTickCollector creates the live stream consumer with its validation
// pipeline.
func ProvideTickCollector(
	stream repository.TickStream,
	refresher *usecase.Refresher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewTickPipeline(refresher, m, mid.WithMaxRPS(50))
	return usecase.NewTickCollector(stream, pipe, refresher, log)
}

// ProvideMarketHandler creates the dashboard API handler.
func ProvideMarketHandler(
	log *applogger.Logger,
	controller *usecase.ViewController,
	refresher *usecase.Refresher,
	collector *usecase.TickCollector,
	archive repository.Archive,
	trans *i18n.Service,
	formatter *format.Formatter,
	clock *marketclock.Clock,
) xhttp.Handler {
	return api.NewMarketHandler(log, controller, refresher, collector, archive, trans, formatter, clock.Location())
}

// kafkaLogSink adapts the Kafka producer to the logger's collector.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	refresher *usecase.Refresher,
	collector *usecase.TickCollector,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	archiveQueue *queue.RedisQueue,
	publisher repository.SnapshotPublisher,
	producer *pkgkafka.Producer,
	redisCache *pkgcache.RedisCache,
) *server.App {
	if producer != nil {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".logs",
			Publisher:      kafkaLogSink{producer: producer},
		})
	}

	app := server.New(cfg, log, refresher, collector, handler, chClient, archiveQueue)
	if publisher != nil {
		app.AddCloser(publisher.Close)
	}
	if redisCache != nil {
		app.AddCloser(redisCache.Close)
	}
	return app
}
