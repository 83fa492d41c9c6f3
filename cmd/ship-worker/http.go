package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/BearBump/ShipBox/config"
	"github.com/BearBump/ShipBox/internal/services/carriersync"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type workerHTTPOpts struct {
	httpAddr    string
	swaggerPath string
	onListen    func(httpAddr string)

	syncer *carriersync.Syncer
	cfg    *config.Config
}

func writeWorkerJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func workerRouter(opts workerHTTPOpts) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeWorkerJSON(w, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.syncer == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeWorkerJSON(w, map[string]string{"status": "not ready"})
			return
		}
		writeWorkerJSON(w, map[string]string{"status": "ready"})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		if opts.syncer == nil {
			writeWorkerJSON(w, map[string]string{"error": "syncer not wired"})
			return
		}
		writeWorkerJSON(w, opts.syncer.Stats())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		if opts.cfg == nil {
			writeWorkerJSON(w, map[string]string{"error": "config not wired"})
			return
		}
		sb := opts.cfg.ShipBox
		// Только рабочие настройки воркера, без секретов.
		writeWorkerJSON(w, map[string]any{
			"pollIntervalSeconds":          sb.WorkerPollIntervalSeconds,
			"batchSize":                    sb.WorkerBatchSize,
			"concurrency":                  sb.WorkerConcurrency,
			"leaseSeconds":                 sb.WorkerLeaseSeconds,
			"rateLimitPerMinute":           sb.WorkerRateLimitPerMinute,
			"providerRateLimits":           sb.WorkerProviderRateLimits,
			"nextCheckInTransitMinSeconds": sb.WorkerNextCheckInTransitMinSeconds,
			"nextCheckInTransitMaxSeconds": sb.WorkerNextCheckInTransitMaxSeconds,
			"nextCheckUnknownSeconds":      sb.WorkerNextCheckUnknownSeconds,
			"nextCheckPendingSeconds":      sb.WorkerNextCheckPendingSeconds,
			"nextCheckLastMileSeconds":     sb.WorkerNextCheckLastMileSeconds,
			"carrierMode":                  sb.CarrierEmulatorMode,
		})
	})

	r.Post("/trigger", func(w http.ResponseWriter, r *http.Request) {
		if opts.syncer == nil {
			writeWorkerJSON(w, map[string]string{"error": "syncer not wired"})
			return
		}
		opts.syncer.Trigger()
		writeWorkerJSON(w, map[string]bool{"triggered": true})
	})

	if opts.swaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, opts.swaggerPath)
		})

		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(opts.swaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	return r
}

func runWorkerHTTPServer(ctx context.Context, opts workerHTTPOpts) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}
	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("worker swagger file not found: %s", opts.swaggerPath)
		}
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	srv := &http.Server{Handler: workerRouter(opts), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	err = srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return ctx.Err()
	}
	return err
}
