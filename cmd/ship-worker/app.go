package main

import (
	"context"
	"time"

	"github.com/BearBump/ShipBox/config"
	"github.com/BearBump/ShipBox/internal/broker/kafka"
	"github.com/BearBump/ShipBox/internal/cache/rediscache"
	"github.com/BearBump/ShipBox/internal/integrations/carrier"
	"github.com/BearBump/ShipBox/internal/integrations/carrier/emulatorv1"
	"github.com/BearBump/ShipBox/internal/integrations/carrier/fake"
	"github.com/BearBump/ShipBox/internal/services/carriersync"
	"github.com/BearBump/ShipBox/internal/storage/pgshipping"
	"github.com/pkg/errors"
)

type workerFactories struct {
	newStorage       func(cfg *config.Config) (repo carriersync.Repository, closeFn func(), err error)
	newProducer      func(cfg *config.Config) carriersync.Producer
	newRateLimiter   func(cfg *config.Config) carriersync.RateLimiter
	newCarrierClient func(cfg *config.Config) carrier.Client
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (carriersync.Repository, func(), error) {
			// Воркер читает общую очередь проверок, in-memory хранилище тут бесполезно.
			if cfg.ShipBox.StorageBackend == config.StorageBackendMemory {
				return nil, nil, errors.New("ship-worker requires the postgres storage backend")
			}
			st, err := pgshipping.New(cfg.Database.ConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) carriersync.Producer {
			return kafka.NewProducer(cfg.Kafka.Brokers())
		},
		newRateLimiter: func(cfg *config.Config) carriersync.RateLimiter {
			return rediscache.NewRateLimiter(cfg.Redis.Addr())
		},
		newCarrierClient: func(cfg *config.Config) carrier.Client {
			// Без base_url работаем на локальном fake.
			if cfg.ShipBox.CarrierEmulatorBaseURL != "" && cfg.ShipBox.CarrierEmulatorMode == "v1" {
				return emulatorv1.New(cfg.ShipBox.CarrierEmulatorBaseURL, cfg.ShipBox.CarrierEmulatorAPIKey)
			}
			return fake.New()
		},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func plannerConfig(cfg *config.Config) carriersync.PlannerConfig {
	return carriersync.PlannerConfig{
		InTransitMinDelay:   seconds(cfg.ShipBox.WorkerNextCheckInTransitMinSeconds),
		InTransitMaxDelay:   seconds(cfg.ShipBox.WorkerNextCheckInTransitMaxSeconds),
		UnknownDelay:        seconds(cfg.ShipBox.WorkerNextCheckUnknownSeconds),
		PendingDelay:        seconds(cfg.ShipBox.WorkerNextCheckPendingSeconds),
		OutForDeliveryDelay: seconds(cfg.ShipBox.WorkerNextCheckLastMileSeconds),
		Backoff1:            seconds(cfg.ShipBox.WorkerBackoff1Seconds),
		Backoff2:            seconds(cfg.ShipBox.WorkerBackoff2Seconds),
		Backoff3:            seconds(cfg.ShipBox.WorkerBackoff3Seconds),
		Backoff4:            seconds(cfg.ShipBox.WorkerBackoff4Seconds),
	}
}

func newSyncer(cfg *config.Config, repo carriersync.Repository, f workerFactories) *carriersync.Syncer {
	topic := cfg.Kafka.ShipmentTrackingTopic
	if topic == "" {
		topic = "shipment.tracking"
	}

	providerLimits := make(map[string]int64, len(cfg.ShipBox.WorkerProviderRateLimits))
	for code, n := range cfg.ShipBox.WorkerProviderRateLimits {
		providerLimits[code] = int64(n)
	}

	// Нули в WithSettings/NewPlanner означают дефолты.
	return carriersync.New(repo, f.newCarrierClient(cfg), f.newProducer(cfg), f.newRateLimiter(cfg), topic).
		WithSettings(
			seconds(cfg.ShipBox.WorkerPollIntervalSeconds),
			cfg.ShipBox.WorkerBatchSize,
			cfg.ShipBox.WorkerConcurrency,
			seconds(cfg.ShipBox.WorkerLeaseSeconds),
			int64(cfg.ShipBox.WorkerRateLimitPerMinute),
		).
		WithPlanner(plannerConfig(cfg)).
		WithProviderRateLimits(providerLimits)
}

// RunShipWorker runs the carrier sync loop and the worker HTTP endpoints until ctx ends.
func RunShipWorker(ctx context.Context, cfg *config.Config, f workerFactories, httpOpts workerHTTPOpts) error {
	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	syncer := newSyncer(cfg, repo, f)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpOpts.syncer = syncer
	httpOpts.cfg = cfg
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, httpOpts)
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- syncer.Run(ctx)
	}()

	select {
	case err := <-runErr:
		cancel()
		<-httpErr
		return err
	case err := <-httpErr:
		cancel()
		<-runErr
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
}
