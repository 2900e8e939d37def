package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/config"
	"github.com/fekuna/omnipos-admin-service/internal/category"
	catRepoPkg "github.com/fekuna/omnipos-admin-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-admin-service/internal/category/usecase"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/customer"
	custRepoPkg "github.com/fekuna/omnipos-admin-service/internal/customer/repository"
	custUCPkg "github.com/fekuna/omnipos-admin-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-admin-service/internal/importer"
	"github.com/fekuna/omnipos-admin-service/internal/order"
	orderRepoPkg "github.com/fekuna/omnipos-admin-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-admin-service/internal/order/usecase"
	"github.com/fekuna/omnipos-admin-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-admin-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-admin-service/internal/product/usecase"
	"github.com/fekuna/omnipos-admin-service/pkg/broker"
	"github.com/fekuna/omnipos-admin-service/pkg/cache"
	"github.com/fekuna/omnipos-admin-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
	"github.com/fekuna/omnipos-admin-service/pkg/search"
	"github.com/fekuna/omnipos-admin-service/pkg/storage"
)

// app holds every long-lived dependency shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger logger.ZapLogger

	db       *sqlx.DB
	redis    *cache.RedisClient
	cache    cache.Cache
	producer *broker.KafkaProducer

	catRepo  *catRepoPkg.PGRepository
	prodRepo *prodRepoPkg.PGRepository
	ordRepo  *orderRepoPkg.PGRepository
	custRepo *custRepoPkg.PGRepository

	categories category.UseCase
	products   product.UseCase
	orders     order.UseCase
	customers  customer.UseCase
	importer   *importer.Importer

	closers []func() error
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	return logger.NewZapLogger(logConfig)
}

// newApp connects to the backing services and builds the use cases. Only
// PostgreSQL is required; Redis, Kafka, Elasticsearch and S3 degrade to
// in-memory or disabled variants when unset or unreachable.
func newApp(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	// Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// Repositories
	a.catRepo = catRepoPkg.NewPGRepository(db)
	a.prodRepo = prodRepoPkg.NewPGRepository(db)
	a.ordRepo = orderRepoPkg.NewPGRepository(db)
	a.custRepo = custRepoPkg.NewPGRepository(db)

	// Redis
	a.cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Could not connect to Redis, using in-process cache", zap.Error(err))
		} else {
			a.redis = redisClient
			a.cache = redisClient
			a.closers = append(a.closers, redisClient.Close)
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Kafka producer
	var publisher changefeed.Publisher = changefeed.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		a.producer = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		a.closers = append(a.closers, a.producer.Close)
		publisher = changefeed.NewKafkaPublisher(a.producer)
		log.Info("Publishing change events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// Elasticsearch
	var searcher product.Searcher
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			log.Warn("Could not connect to Elasticsearch (search falls back to SQL)", zap.Error(err))
		} else {
			searcher = esClient
			log.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// Object storage
	var store product.ObjectStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3(ctx, &storage.Config{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Warn("Could not configure object storage (image uploads disabled)", zap.Error(err))
		} else {
			store = s3Store
			log.Info("Using object storage", zap.String("bucket", cfg.Storage.Bucket))
		}
	}

	// UseCases
	listTTL := time.Duration(cfg.Cache.ListTTL) * time.Second
	importMode, err := importer.ParseMode(cfg.Import.Mode)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.products = prodUCPkg.NewProductUseCase(a.prodRepo, a.catRepo, a.cache, searcher, store, publisher, prodUCPkg.Options{
		CacheTTL:        listTTL,
		BulkConcurrency: cfg.Import.Concurrency,
	}, log)
	// Cached product lists carry category names, so they go with the tree.
	a.categories = catUCPkg.NewCategoryUseCase(a.catRepo, a.cache, publisher, listTTL, log, a.products.InvalidateListCache)
	a.orders = orderUCPkg.NewOrderUseCase(a.ordRepo, a.custRepo, publisher, log)
	a.customers = custUCPkg.NewCustomerUseCase(a.custRepo, a.ordRepo, log)
	a.importer = importer.NewImporter(a.products, a.categories, importer.Options{
		Mode:        importMode,
		Concurrency: cfg.Import.Concurrency,
	}, log)

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
