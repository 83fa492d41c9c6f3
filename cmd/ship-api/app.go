package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	shippingapi "github.com/BearBump/ShipBox/internal/api/shipping_api"
	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/broker/kafka"
	"github.com/BearBump/ShipBox/internal/broker/messages"
	"github.com/BearBump/ShipBox/internal/services/shipping"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type shipAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	requestTimeout time.Duration
	rateLimiter    shippingapi.RateLimiter
	calcPerMinute  int64

	// consumerRetry is the pause before a failed consume loop is restarted.
	consumerRetry time.Duration

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runShipAPI(ctx context.Context, opts shipAPIOpts, svc *shipping.Service, consumer kafkaConsumer) error {
	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
		}
	}

	api := shippingapi.New(svc).
		WithRequestTimeout(opts.requestTimeout).
		WithCalculateRateLimit(opts.rateLimiter, opts.calcPerMinute)

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, lis, api, opts.swaggerPath)
	}()

	if consumer != nil {
		go func() {
			slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
			consumeTrackingUpdates(ctx, consumer, svc, opts.consumerRetry)
		}()
	} else {
		slog.Warn("kafka is not configured, carrier updates are not consumed")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, api *shippingapi.ShippingAPI, swaggerPath string) error {
	r := chi.NewRouter()
	if swaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, swaggerPath)
		})
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger.json"),
		))
	}
	r.Mount("/", api.Routes())

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return ctx.Err()
	}
	return err
}

// consumeTrackingUpdates keeps the consumer running until ctx ends. A failed message is not
// committed, so after the pause it is read again.
func consumeTrackingUpdates(ctx context.Context, consumer kafkaConsumer, svc *shipping.Service, retry time.Duration) {
	if retry <= 0 {
		retry = time.Second
	}
	handler := kafka.JSONHandler(func(_ string, m messages.ShipmentTrackingUpdated) error {
		return applyTrackingUpdate(ctx, svc, m)
	})
	for {
		err := consumer.Consume(ctx, handler)
		if ctx.Err() != nil {
			return
		}
		slog.Error("kafka consume failed", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

// applyTrackingUpdate skips updates for shipments that no longer exist or that are invalid.
func applyTrackingUpdate(ctx context.Context, svc *shipping.Service, m messages.ShipmentTrackingUpdated) error {
	err := svc.ApplyCarrierUpdate(ctx, m)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalid) {
		return errors.Wrapf(kafka.ErrSkipMessage, "shipment %s: %v", m.ShipmentID, err)
	}
	return err
}
