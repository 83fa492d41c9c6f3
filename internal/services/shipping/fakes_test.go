package shipping

import (
	"context"
	"sync"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/BearBump/ShipBox/internal/storage/memshipping"
	"github.com/stretchr/testify/mock"
)

type fakeCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishJSON(ctx context.Context, topic, key string, v any) error {
	args := m.Called(ctx, topic, key, v)
	return args.Error(0)
}

// countingRepo counts tracking-number lookups to tell cache hits from repository reads.
type countingRepo struct {
	*memshipping.Storage

	mu     sync.Mutex
	lookup int
}

func (r *countingRepo) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	r.mu.Lock()
	r.lookup++
	r.mu.Unlock()
	return r.Storage.GetShipmentByTrackingNumber(ctx, trackingNumber)
}

func (r *countingRepo) lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup
}

func floatPtr(v float64) *float64 { return &v }

// interleavingRepo runs onLookup once, right after a tracking-number read has taken its
// snapshot and before the snapshot is returned.
type interleavingRepo struct {
	*memshipping.Storage

	once     sync.Once
	onLookup func()
}

func (r *interleavingRepo) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	sh, err := r.Storage.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if err == nil && r.onLookup != nil {
		r.once.Do(r.onLookup)
	}
	return sh, err
}
