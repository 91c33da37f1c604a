package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/agrolytics/maize-advisor/internal/config"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
	"github.com/agrolytics/maize-advisor/internal/services/weather"
	"github.com/agrolytics/maize-advisor/internal/storage/influx"
	"github.com/agrolytics/maize-advisor/internal/storage/postgres"
	"github.com/agrolytics/maize-advisor/pkg/rabbitmq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}

	acq, err := weather.NewAcquirer(weather.BuildProviders(cfg), store, nil, weather.Options{
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

	// event bus is optional: predictions still run if the broker is down
	var bus rabbitmq.IPublisher
	client, err := rabbitmq.Connect(ctx, rabbitmq.Config{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		User:     cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: cfg.PredictionClientTag + "-prediction",
	})
	if err != nil {
		log.Printf("prediction: event bus unavailable, completion events disabled: %v", err)
	} else {
		bus = rabbitmq.NewPublisher(client, "event/predictionCompleted", 1)
	}

	scorer := prediction.NewScorer(cfg.BaseYieldSeed, cfg.ModelVersion)
	svc := prediction.NewService(store, store, acq, store, scorer, bus)

	var writer *influx.Writer
	if cfg.InfluxToken != "" {
		client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer client.Close()
		writer = influx.NewWriter(client, cfg.InfluxOrg, cfg.InfluxBucket)
		svc.WithTelemetry(writer)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           prediction.NewRouter(svc, store, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("prediction service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	if bus != nil {
		bus.Close()
	}
	if writer != nil {
		writer.Flush()
	}
	log.Println("prediction service: shutdown complete")
}
