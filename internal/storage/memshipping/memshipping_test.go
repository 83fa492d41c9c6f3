package memshipping

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestProviders_UniqueCodeAndOrdering(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.CreateProvider(ctx, &models.ShippingProvider{ID: "a", Name: "Alpha", Code: "A", Priority: 1, IsActive: true}))
	require.NoError(t, st.CreateProvider(ctx, &models.ShippingProvider{ID: "b", Name: "Beta", Code: "B", Priority: 5, IsActive: true}))
	require.NoError(t, st.CreateProvider(ctx, &models.ShippingProvider{ID: "c", Name: "Gamma", Code: "C", Priority: 3}))

	err := st.CreateProvider(ctx, &models.ShippingProvider{ID: "d", Name: "Dup", Code: "A"})
	require.True(t, errors.Is(err, apperr.ErrInvalid))

	all, err := st.ListProviders(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	active, err := st.ListProviders(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)

	// code can move to a new value and the old one is released
	require.NoError(t, st.UpdateProvider(ctx, &models.ShippingProvider{ID: "a", Name: "Alpha", Code: "AA"}))
	require.NoError(t, st.CreateProvider(ctx, &models.ShippingProvider{ID: "e", Name: "Echo", Code: "A"}))

	err = st.UpdateProvider(ctx, &models.ShippingProvider{ID: "missing", Code: "Z"})
	require.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRates_FilterAndCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.CreateProvider(ctx, &models.ShippingProvider{ID: "p", Code: "P", IsActive: true}))
	err := st.CreateRate(ctx, &models.ShippingRate{ID: "x", ProviderID: "nope"})
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	r := &models.ShippingRate{
		ID: "r1", ProviderID: "p", IsActive: true, CreatedAt: now,
		Structure: models.WeightBasedRate{Bands: []models.WeightBand{{MinWeight: 0, MaxWeight: 1, Rate: 10}}},
		Zones:     []models.Zone{{Name: "z", Pincodes: []string{"1"}, Multiplier: 1}},
	}
	require.NoError(t, st.CreateRate(ctx, r))
	require.NoError(t, st.CreateRate(ctx, &models.ShippingRate{ID: "r2", ProviderID: "p", CreatedAt: now.Add(time.Second), Structure: models.FlatRate{BaseRate: 5}}))

	// the stored rate is not aliased with the caller's value
	r.Zones[0].Pincodes[0] = "changed"
	got, err := st.GetRate(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "1", got.Zones[0].Pincodes[0])

	active, err := st.ListRates(ctx, models.RateFilter{ProviderID: "p", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := st.ListRates(ctx, models.RateFilter{})
	require.NoError(t, err)
	require.Equal(t, "r1", all[0].ID)
	require.Equal(t, "r2", all[1].ID)
}

func TestShipments_AppendAndClaim(t *testing.T) {
	ctx := context.Background()
	st := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.CreateShipment(ctx, &models.Shipment{
		ID: "s1", OrderID: "o1", ProviderCode: "P", TrackingNumber: "SB1",
		Status: models.ShipmentStatusPending, CreatedAt: now,
		TrackingEvents: []models.TrackingEvent{{Status: models.ShipmentStatusPending, Timestamp: now}},
	}))
	require.Error(t, st.CreateShipment(ctx, &models.Shipment{ID: "s2", TrackingNumber: "SB1"}))

	due, err := st.ClaimDueShipments(ctx, now, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)

	due, err = st.ClaimDueShipments(ctx, now.Add(30*time.Second), 10, time.Minute)
	require.NoError(t, err)
	require.Empty(t, due)

	msg := "boom"
	require.NoError(t, st.RecordCarrierCheck(ctx, "s1", models.CarrierCheck{CheckedAt: now, NextCheckAt: now, Error: &msg}))
	due, err = st.ClaimDueShipments(ctx, now, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.EqualValues(t, 1, due[0].CheckFailCount)

	sh, err := st.AppendTrackingEvent(ctx, "s1", models.TrackingAppend{
		Event: models.TrackingEvent{Status: models.ShipmentStatusDelivered, Timestamp: now.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.Len(t, sh.TrackingEvents, 2)
	require.Equal(t, now.Add(time.Hour), *sh.ActualDelivery)

	require.NoError(t, st.RecordCarrierCheck(ctx, "s1", models.CarrierCheck{CheckedAt: now, NextCheckAt: now}))
	due, err = st.ClaimDueShipments(ctx, now.Add(time.Hour), 10, time.Minute)
	require.NoError(t, err)
	require.Empty(t, due)

	byTN, err := st.GetShipmentByTrackingNumber(ctx, "SB1")
	require.NoError(t, err)
	require.Equal(t, models.ShipmentStatusDelivered, byTN.Status)

	list, err := st.ListShipmentsByOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	empty, err := st.ListShipmentsByOrder(ctx, "none")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestShipments_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.CreateShipment(ctx, &models.Shipment{ID: "s1", TrackingNumber: "SB1", Status: models.ShipmentStatusPending}))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.AppendTrackingEvent(ctx, "s1", models.TrackingAppend{
				Event: models.TrackingEvent{Status: models.ShipmentStatusInTransit},
			})
		}()
	}
	wg.Wait()

	sh, err := st.GetShipment(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sh.TrackingEvents, n)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().GetShipment(ctx, "s1")
	require.ErrorIs(t, err, context.Canceled)
}
