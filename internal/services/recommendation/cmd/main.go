package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrolytics/maize-advisor/internal/config"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
	"github.com/agrolytics/maize-advisor/internal/services/recommendation"
	"github.com/agrolytics/maize-advisor/internal/storage/postgres"
	"github.com/agrolytics/maize-advisor/pkg/dedup"
	"github.com/agrolytics/maize-advisor/pkg/rabbitmq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	store, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}

	th := prediction.Thresholds{
		CriticalYield:    cfg.CriticalYield,
		DeficitPct:       cfg.DeficitThreshold,
		LowConfidencePct: cfg.LowConfidence,
		OptimalYield:     cfg.OptimalYield,
	}

	var adv recommendation.AdvancedProvider
	if cfg.AdvancedEnabled && cfg.AdvancedURL != "" {
		adv = recommendation.NewHTTPAdvancedProvider(cfg.AdvancedURL, cfg.AdvancedTimeout)
		log.Printf("recommendation: advanced escalation enabled against %s", cfg.AdvancedURL)
	}
	engine := recommendation.NewEngine(th, adv)
	trigger := recommendation.NewTrigger(store, engine, th, dedup.New(10*time.Minute, 10000))

	client, err := rabbitmq.Connect(ctx, rabbitmq.Config{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		User:     cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: cfg.PredictionClientTag + "-recommendation",
	})
	if err != nil {
		log.Fatalf("event bus connect failed: %v", err)
	}

	consumer := rabbitmq.NewConsumer[messages.PredictionCompletedEvent](client, cfg.PredictionTopic, 1, trigger.Handle)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           healthMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("recommendation service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	consumer.Consume(ctx)

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("recommendation service: shutdown complete")
}

func healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	return mux
}
