package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and passed by value into the services.
// Nothing mutates it afterwards.
type Config struct {
	// Weather acquisition
	RetryMaxAttempts int           // attempts against the primary provider
	RetryInitialWait time.Duration // first backoff delay
	RetryMultiplier  float64
	ProviderTimeout  time.Duration // per provider call
	FallbackEnabled  bool
	ProviderOrder    []string // primary first, fallbacks after
	ValidationOn     bool
	CacheTTL         time.Duration

	// Provider credentials
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	OpenMeteoURL      string

	// Prediction model
	BaseYieldSeed uint64
	ModelVersion  string

	// Criticality thresholds
	CriticalYield    float64 // t/ha
	DeficitThreshold float64 // percent
	LowConfidence    float64 // percent
	OptimalYield     float64 // t/ha fallback expected yield

	// Advanced recommendation collaborator
	AdvancedEnabled bool
	AdvancedURL     string
	AdvancedTimeout time.Duration

	// Bus (MQTT over RabbitMQ)
	MQTTHost            string
	MQTTPort            int
	MQTTUser            string
	MQTTPassword        string
	PredictionTopic     string
	PredictionClientTag string

	// Storage
	PostgresDSN  string
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// HTTP
	Port string
}

// Load reads the environment (plus an optional .env file) into a Config.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		RetryMaxAttempts: getenvInt("WEATHER_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialWait: time.Duration(getenvInt("WEATHER_RETRY_INITIAL_MS", 1000)) * time.Millisecond,
		RetryMultiplier:  getenvFloat("WEATHER_RETRY_MULTIPLIER", 2.0),
		ProviderTimeout:  time.Duration(getenvInt("WEATHER_PROVIDER_TIMEOUT_MS", 30000)) * time.Millisecond,
		FallbackEnabled:  getenvBool("WEATHER_FALLBACK_ENABLED", true),
		ProviderOrder:    getenvList("WEATHER_PROVIDER_ORDER", []string{"openweathermap", "open-meteo"}),
		ValidationOn:     getenvBool("WEATHER_VALIDATION_ENABLED", true),
		CacheTTL:         time.Duration(getenvInt("WEATHER_CACHE_TTL_MIN", 30)) * time.Minute,

		OpenWeatherAPIKey: getenv("OPENWEATHER_API_KEY", ""),
		OpenWeatherURL:    getenv("OPENWEATHER_URL", "https://api.openweathermap.org"),
		OpenMeteoURL:      getenv("OPENMETEO_URL", "https://api.open-meteo.com"),

		BaseYieldSeed: uint64(getenvInt("MODEL_BASE_YIELD_SEED", 42)),
		ModelVersion:  getenv("MODEL_VERSION", "heuristic-v1"),

		CriticalYield:    getenvFloat("CRITICAL_YIELD_THRESHOLD", 2.0),
		DeficitThreshold: getenvFloat("YIELD_DEFICIT_THRESHOLD_PCT", 15.0),
		LowConfidence:    getenvFloat("LOW_CONFIDENCE_THRESHOLD_PCT", 65.0),
		OptimalYield:     getenvFloat("OPTIMAL_YIELD_TARGET", 6.0),

		AdvancedEnabled: getenvBool("ADVANCED_RECO_ENABLED", false),
		AdvancedURL:     getenv("ADVANCED_RECO_URL", ""),
		AdvancedTimeout: time.Duration(getenvInt("ADVANCED_RECO_TIMEOUT_MS", 10000)) * time.Millisecond,

		MQTTHost:            getenv("RABBITMQ_HOST", getenv("MQTT_HOST", "localhost")),
		MQTTPort:            getenvInt("RABBITMQ_PORT", getenvInt("MQTT_PORT", 1883)),
		MQTTUser:            getenv("RABBITMQ_USER", getenv("MQTT_USER", "mqtt_user")),
		MQTTPassword:        getenv("RABBITMQ_PASSWORD", getenv("MQTT_PASS", "mqtt_pwd")),
		PredictionTopic:     getenv("PREDICTION_TOPIC", "event/predictionCompleted/#"),
		PredictionClientTag: getenv("MQTT_CLIENT_ID", "maize-advisor"),

		PostgresDSN:  getenv("POSTGRES_DSN", "host=localhost user=maize password=maize dbname=maize port=5432 sslmode=disable"),
		InfluxURL:    getenv("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "agro"),
		InfluxBucket: getenv("INFLUX_BUCKET", "weather-telemetry"),

		Port: getenv("PORT", "8080"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getenvList(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
