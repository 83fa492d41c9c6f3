package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/ShipBox/config"
	"github.com/BearBump/ShipBox/internal/broker/kafka"
	"github.com/BearBump/ShipBox/internal/cache"
	"github.com/BearBump/ShipBox/internal/cache/rediscache"
	"github.com/BearBump/ShipBox/internal/services/shipping"
	"github.com/BearBump/ShipBox/internal/storage/memshipping"
	"github.com/BearBump/ShipBox/internal/storage/pgshipping"
)

type shipAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     shipAPIOpts
	svc      *shipping.Service
	consumer kafkaConsumer
	closers  []func()
}

func mustBootstrapShipAPI(args []string) *shipAPIApp {
	cfgPath, err := config.ResolvePath("ship-api", args)
	if err != nil {
		panic(err)
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	app := &shipAPIApp{}

	var repo shipping.Repository
	switch cfg.ShipBox.StorageBackend {
	case config.StorageBackendMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		st := memshipping.New()
		repo = st
		app.closers = append(app.closers, st.Close)
	default:
		st := mustOpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)
		repo = st
		app.closers = append(app.closers, st.Close)
	}

	var bytesCache cache.BytesCache
	var limiter *rediscache.RateLimiter
	if cfg.Redis.Host != "" {
		rc := rediscache.New(cfg.Redis.Addr())
		bytesCache = rc
		limiter = rc.RateLimiter()
		app.closers = append(app.closers, func() { _ = rc.Close() })
	} else {
		slog.Warn("redis is not configured, tracking cache and calculate rate limit are off")
	}

	var publisher shipping.Publisher
	if cfg.Kafka.Host != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers())
		publisher = producer
		app.closers = append(app.closers, func() { _ = producer.Close() })
	}

	cacheTTL := time.Duration(cfg.ShipBox.TrackingCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	app.svc = shipping.New(repo, bytesCache, publisher, cacheTTL).
		WithOrderStatusTopic(cfg.Kafka.OrderStatusTopic)

	httpAddr := cfg.ShipBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.ShipBox.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "ship-api"
	}
	topic := cfg.Kafka.ShipmentTrackingTopic
	if topic == "" {
		topic = "shipment.tracking"
	}
	calcPerMinute := int64(cfg.ShipBox.CalculateRateLimitPerMinute)
	if calcPerMinute == 0 {
		calcPerMinute = 100
	}

	if cfg.Kafka.Host != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), topic, consumerGroup)
		app.consumer = consumer
		app.closers = append(app.closers, func() { _ = consumer.Close() })
	}

	app.opts = shipAPIOpts{
		httpAddr:       httpAddr,
		swaggerPath:    os.Getenv("swaggerPath"),
		topic:          topic,
		consumerGroup:  consumerGroup,
		requestTimeout: time.Duration(cfg.ShipBox.RequestTimeoutSeconds) * time.Second,
		calcPerMinute:  calcPerMinute,
	}
	if limiter != nil {
		app.opts.rateLimiter = limiter
	}

	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return app
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgshipping.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipping.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *shipAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *shipAPIApp) Run() error {
	return runShipAPI(a.ctx, a.opts, a.svc, a.consumer)
}
