package fake

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/BearBump/ShipBox/internal/integrations/carrier"
	"github.com/BearBump/ShipBox/internal/models"
)

// FakeClient: заглушка перевозчика для локального запуска воркера без эмулятора.
// Статус детерминирован по (provider, tracking_number): часть отправок станет delivered.
type FakeClient struct {
	now func() time.Time
}

func New() *FakeClient {
	return &FakeClient{now: func() time.Time { return time.Now().UTC() }}
}

var progression = []string{
	models.ShipmentStatusPickedUp,
	models.ShipmentStatusInTransit,
	models.ShipmentStatusInTransit,
	models.ShipmentStatusOutForDelivery,
	models.ShipmentStatusDelivered,
}

func (f *FakeClient) GetTracking(ctx context.Context, providerCode, trackingNumber string) (carrier.TrackingResult, error) {
	if err := ctx.Err(); err != nil {
		return carrier.TrackingResult{}, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(providerCode))
	_, _ = h.Write([]byte("|"))
	_, _ = h.Write([]byte(trackingNumber))
	status := progression[h.Sum32()%uint32(len(progression))]

	return carrier.TrackingResult{
		Status:      status,
		StatusRaw:   status,
		Location:    providerCode + " hub",
		Description: "fake carrier update",
		EventTime:   f.now(),
	}, nil
}
