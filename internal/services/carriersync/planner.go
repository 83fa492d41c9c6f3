package carriersync

import (
	"math/rand"
	"sync"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
)

type Rand interface {
	Intn(n int) int
}

type PlannerConfig struct {
	TerminalDelay time.Duration // default: 365 days

	InTransitMinDelay time.Duration // default: 1 minute
	InTransitMaxDelay time.Duration // default: 1 minute

	// Booked but not handed to the carrier yet.
	PendingDelay time.Duration // default: 5 minutes
	// Last mile: the courier is already on the way.
	OutForDeliveryDelay time.Duration // default: 1 minute

	UnknownDelay time.Duration // default: 1 minute

	Backoff1 time.Duration // default: 5 minutes
	Backoff2 time.Duration // default: 15 minutes
	Backoff3 time.Duration // default: 30 minutes
	Backoff4 time.Duration // default: 60 minutes
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		TerminalDelay: 365 * 24 * time.Hour,

		// Переопределяется конфигом ship-worker.
		InTransitMinDelay: 1 * time.Minute,
		InTransitMaxDelay: 1 * time.Minute,

		PendingDelay:        5 * time.Minute,
		OutForDeliveryDelay: 1 * time.Minute,

		UnknownDelay: 1 * time.Minute,

		Backoff1: 5 * time.Minute,
		Backoff2: 15 * time.Minute,
		Backoff3: 30 * time.Minute,
		Backoff4: 60 * time.Minute,
	}
}

type Planner struct {
	cfg PlannerConfig

	mu sync.Mutex // r is shared by the syncer goroutines
	r  Rand
}

func NewPlanner(cfg PlannerConfig, r Rand) *Planner {
	def := DefaultPlannerConfig()
	if cfg.TerminalDelay <= 0 {
		cfg.TerminalDelay = def.TerminalDelay
	}
	if cfg.InTransitMinDelay <= 0 {
		cfg.InTransitMinDelay = def.InTransitMinDelay
	}
	if cfg.InTransitMaxDelay <= 0 {
		cfg.InTransitMaxDelay = def.InTransitMaxDelay
	}
	if cfg.InTransitMaxDelay < cfg.InTransitMinDelay {
		cfg.InTransitMaxDelay = cfg.InTransitMinDelay
	}
	if cfg.PendingDelay <= 0 {
		cfg.PendingDelay = def.PendingDelay
	}
	if cfg.OutForDeliveryDelay <= 0 {
		cfg.OutForDeliveryDelay = def.OutForDeliveryDelay
	}
	if cfg.UnknownDelay <= 0 {
		cfg.UnknownDelay = def.UnknownDelay
	}
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Backoff4 <= 0 {
		cfg.Backoff4 = def.Backoff4
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{cfg: cfg, r: r}
}

// NextCheckDelay decides when a shipment is polled again after a successful check.
func (p *Planner) NextCheckDelay(status string) time.Duration {
	switch status {
	case models.ShipmentStatusDelivered, models.ShipmentStatusReturned, models.ShipmentStatusFailedDelivery:
		return p.cfg.TerminalDelay
	case models.ShipmentStatusPending:
		return p.cfg.PendingDelay
	case models.ShipmentStatusOutForDelivery:
		return p.cfg.OutForDeliveryDelay
	case models.ShipmentStatusPickedUp, models.ShipmentStatusInTransit:
		return p.inTransitDelay()
	default:
		return p.cfg.UnknownDelay
	}
}

// inTransitDelay is uniform in [InTransitMinDelay, InTransitMaxDelay] with second precision.
func (p *Planner) inTransitDelay() time.Duration {
	min := p.cfg.InTransitMinDelay
	max := p.cfg.InTransitMaxDelay
	if max == min {
		return min
	}
	secMin := int(min.Seconds())
	secMax := int(max.Seconds())
	if secMax < secMin {
		secMax = secMin
	}
	p.mu.Lock()
	n := p.r.Intn(secMax - secMin + 1)
	p.mu.Unlock()
	return time.Duration(secMin+n) * time.Second
}

// BackoffDelay is the delay after the nextFailCount-th consecutive carrier failure.
func (p *Planner) BackoffDelay(nextFailCount int32) time.Duration {
	switch {
	case nextFailCount <= 1:
		return p.cfg.Backoff1
	case nextFailCount == 2:
		return p.cfg.Backoff2
	case nextFailCount == 3:
		return p.cfg.Backoff3
	default:
		return p.cfg.Backoff4
	}
}
