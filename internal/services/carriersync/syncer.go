// Package carriersync polls carriers for shipments that are due a check and publishes the
// results to Kafka; the API applies them to the shipments.
package carriersync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/ShipBox/internal/broker/messages"
	"github.com/BearBump/ShipBox/internal/integrations/carrier"
	"github.com/BearBump/ShipBox/internal/models"
)

type Repository interface {
	ClaimDueShipments(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.DueShipment, error)
}

type Producer interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

type RateLimiter interface {
	AllowPerMinute(ctx context.Context, scope string, limit int64, now time.Time) (bool, int64, error)
}

const publishAttempts = 10

type Syncer struct {
	repo     Repository
	carrier  carrier.Client
	producer Producer
	rl       RateLimiter

	topic string

	planner *Planner

	pollInterval       time.Duration
	batchSize          int
	concurrency        int
	lease              time.Duration
	rateLimitPerMinute int64
	providerLimits     map[string]int64

	now func() time.Time

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalClaimed        atomic.Int64
	totalProcessed      atomic.Int64
	totalThrottled      atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, c carrier.Client, producer Producer, rl RateLimiter, topic string) *Syncer {
	return &Syncer{
		repo: repo, carrier: c, producer: producer, rl: rl, topic: topic,
		planner:            NewPlanner(DefaultPlannerConfig(), nil),
		pollInterval:       2 * time.Second,
		batchSize:          100,
		concurrency:        10,
		lease:              120 * time.Second,
		rateLimitPerMinute: 120,
		providerLimits:     map[string]int64{},
		now:                func() time.Time { return time.Now().UTC() },
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (s *Syncer) WithSettings(pollInterval time.Duration, batchSize, concurrency int, lease time.Duration, rlPerMin int64) *Syncer {
	if pollInterval > 0 {
		s.pollInterval = pollInterval
	}
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	if lease > 0 {
		s.lease = lease
	}
	if rlPerMin > 0 {
		s.rateLimitPerMinute = rlPerMin
	}
	return s
}

func (s *Syncer) WithPlanner(cfg PlannerConfig) *Syncer {
	s.planner = NewPlanner(cfg, nil)
	return s
}

// WithProviderRateLimits overrides the default per-minute limit for individual provider codes.
func (s *Syncer) WithProviderRateLimits(limits map[string]int64) *Syncer {
	for code, n := range limits {
		if n > 0 {
			s.providerLimits[code] = n
		}
	}
	return s
}

func (s *Syncer) WithClock(now func() time.Time) *Syncer {
	if now != nil {
		s.now = now
	}
	return s
}

// Trigger forces an immediate sync cycle (best-effort, non-blocking).
func (s *Syncer) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastCycleAt    *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt  *time.Time `json:"lastTriggerAt,omitempty"`
	TotalClaimed   int64      `json:"totalClaimed"`
	TotalProcessed int64      `json:"totalProcessed"`
	TotalThrottled int64      `json:"totalThrottled"`
	TotalErrors    int64      `json:"totalErrors"`
	InFlight       int64      `json:"inFlight"`
	LastError      string     `json:"lastError,omitempty"`
}

func (s *Syncer) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalClaimed:   s.totalClaimed.Load(),
		TotalProcessed: s.totalProcessed.Load(),
		TotalThrottled: s.totalThrottled.Load(),
		TotalErrors:    s.totalErrors.Load(),
		InFlight:       s.inFlight.Load(),
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Syncer) setLastError(err error) {
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}

func (s *Syncer) Run(ctx context.Context) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runOnce(ctx)
		case <-s.triggerCh:
			s.runOnce(ctx)
		}
	}
}

func (s *Syncer) runOnce(ctx context.Context) {
	now := s.now()
	s.lastCycleUnixNano.Store(now.UnixNano())

	items, err := s.repo.ClaimDueShipments(ctx, now, s.batchSize, s.lease)
	if err != nil {
		slog.Error("claim due shipments", "error", err.Error())
		s.setLastError(err)
		return
	}
	s.totalClaimed.Add(int64(len(items)))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for _, it := range items {
		sem <- struct{}{}
		wg.Add(1)
		s.inFlight.Add(1)
		go func(d models.DueShipment) {
			defer func() {
				s.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := s.processOne(ctx, d); err != nil {
				s.totalErrors.Add(1)
				s.setLastError(err)
				slog.Error("sync shipment", "shipment_id", d.ShipmentID, "provider", d.ProviderCode, "error", err.Error())
			}
			s.totalProcessed.Add(1)
		}(it)
	}
	wg.Wait()
}

func (s *Syncer) limitFor(providerCode string) int64 {
	if n, ok := s.providerLimits[providerCode]; ok {
		return n
	}
	return s.rateLimitPerMinute
}

// processOne checks one shipment with its carrier and publishes the outcome. A throttled
// shipment is left under its lease and comes back once the lease expires.
func (s *Syncer) processOne(ctx context.Context, d models.DueShipment) error {
	now := s.now()

	if s.rl != nil {
		if limit := s.limitFor(d.ProviderCode); limit > 0 {
			allowed, n, err := s.rl.AllowPerMinute(ctx, "carrier:"+d.ProviderCode, limit, now)
			if err != nil {
				return err
			}
			if !allowed {
				s.totalThrottled.Add(1)
				slog.Warn("carrier rate limit exceeded", "provider", d.ProviderCode, "count", n)
				return nil
			}
		}
	}

	res, err := s.carrier.GetTracking(ctx, d.ProviderCode, d.TrackingNumber)
	msg := messages.ShipmentTrackingUpdated{
		ShipmentID: d.ShipmentID,
		CheckedAt:  now,
	}

	if err != nil {
		e := err.Error()
		msg.Error = &e
		msg.NextCheckAt = now.Add(s.planner.BackoffDelay(d.CheckFailCount + 1))
	} else {
		msg.NextCheckAt = now.Add(s.planner.NextCheckDelay(res.Status))
		if res.Status != "" {
			msg.Event = &messages.TrackingEvent{
				Status:            res.Status,
				StatusRaw:         res.StatusRaw,
				Location:          res.Location,
				Description:       res.Description,
				EventTime:         res.EventTime,
				EstimatedDelivery: res.EstimatedDelivery,
			}
		}
	}

	return s.publish(ctx, d.ShipmentID, msg)
}

// publish retries for a while: Kafka may come up later than the worker under docker compose.
func (s *Syncer) publish(ctx context.Context, key string, msg messages.ShipmentTrackingUpdated) error {
	var pubErr error
	for i := 0; i < publishAttempts; i++ {
		if pubErr = s.producer.PublishJSON(ctx, s.topic, key, msg); pubErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(150*(i+1)) * time.Millisecond):
		}
	}
	return pubErr
}
