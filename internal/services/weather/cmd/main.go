package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/agrolytics/maize-advisor/internal/config"
	"github.com/agrolytics/maize-advisor/internal/services/weather"
	"github.com/agrolytics/maize-advisor/internal/storage/influx"
	"github.com/agrolytics/maize-advisor/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	store, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}

	var sink weather.TelemetrySink
	var writer *influx.Writer
	if cfg.InfluxToken != "" {
		client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer client.Close()
		writer = influx.NewWriter(client, cfg.InfluxOrg, cfg.InfluxBucket)
		sink = writer
	}

	providers := weather.BuildProviders(cfg)
	acq, err := weather.NewAcquirer(providers, store, sink, weather.Options{
		MaxAttempts:       cfg.RetryMaxAttempts,
		InitialWait:       cfg.RetryInitialWait,
		Multiplier:        cfg.RetryMultiplier,
		CallTimeout:       cfg.ProviderTimeout,
		FallbackEnabled:   cfg.FallbackEnabled,
		ValidationEnabled: cfg.ValidationOn,
		CacheTTL:          cfg.CacheTTL,
	})
	if err != nil {
		log.Fatalf("acquirer init failed: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           weather.NewHTTPMux(acq, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("weather service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	if writer != nil {
		writer.Flush()
	}
	log.Println("weather service: shutdown complete")
}
