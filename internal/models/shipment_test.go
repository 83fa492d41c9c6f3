package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShipment_Apply_AppendOnly(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := &Shipment{
		Status: ShipmentStatusPending,
		TrackingEvents: []TrackingEvent{
			{Status: ShipmentStatusPending, Location: "WH-1", Description: "Shipment created", Timestamp: t0},
		},
	}

	t1 := t0.Add(time.Hour)
	s.Apply(TrackingAppend{Event: TrackingEvent{Status: ShipmentStatusInTransit, Location: "HUB", Timestamp: t1}})
	require.Equal(t, ShipmentStatusInTransit, s.Status)
	require.Nil(t, s.ActualDelivery)

	t2 := t1.Add(24 * time.Hour)
	eta := t2.Add(time.Hour)
	s.Apply(TrackingAppend{
		Event:             TrackingEvent{Status: ShipmentStatusDelivered, Location: "Door", Timestamp: t2},
		EstimatedDelivery: &eta,
	})

	require.Equal(t, ShipmentStatusDelivered, s.Status)
	require.NotNil(t, s.ActualDelivery)
	require.Equal(t, t2, *s.ActualDelivery)
	require.Equal(t, eta, *s.EstimatedDelivery)
	require.Len(t, s.TrackingEvents, 3)
	require.Equal(t, "WH-1", s.TrackingEvents[0].Location)
	require.Equal(t, t0, s.TrackingEvents[0].Timestamp)
}

func TestShipmentStatus_Helpers(t *testing.T) {
	require.True(t, IsKnownShipmentStatus(ShipmentStatusOutForDelivery))
	require.False(t, IsKnownShipmentStatus("lost"))
	require.True(t, IsTerminalShipmentStatus(ShipmentStatusReturned))
	require.False(t, IsTerminalShipmentStatus(ShipmentStatusInTransit))
}

func TestProvider_Serves(t *testing.T) {
	p := &ShippingProvider{IsActive: true, ServiceAreas: []ServiceArea{
		{Name: "on", Pincodes: []string{"1"}, IsActive: true},
		{Name: "off", Pincodes: []string{"2"}, IsActive: false},
	}}
	require.True(t, p.Serves("1"))
	require.False(t, p.Serves("2"))
	require.False(t, p.Serves("3"))

	p.IsActive = false
	require.False(t, p.Serves("1"))
}
