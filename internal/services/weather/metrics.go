package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_fetch_attempts_total",
		Help: "Provider fetch attempts, including retries.",
	}, []string{"provider", "op"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_fetch_failures_total",
		Help: "Provider fetch attempts that failed or returned no data.",
	}, []string{"provider", "op"})

	fallbackUses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_fallback_total",
		Help: "Calls answered by a fallback provider after the primary failed.",
	})

	validationDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_validation_discards_total",
		Help: "Observations discarded by the validation gate.",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_cache_hits_total",
		Help: "Lookups answered from the TTL cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_cache_misses_total",
		Help: "Lookups that went to the provider chain.",
	})
)
