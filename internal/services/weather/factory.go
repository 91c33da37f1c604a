package weather

import (
	"log"

	"github.com/agrolytics/maize-advisor/internal/config"
)

// BuildProviders maps the configured provider order onto concrete clients.
// Unknown names are skipped with a warning so a typo degrades to a shorter
// chain instead of a dead service.
func BuildProviders(cfg config.Config) []Provider {
	out := make([]Provider, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		switch name {
		case "openweathermap":
			// free tier allows ~1 req/s sustained
			out = append(out, NewRateLimited(NewOWMProvider(cfg.OpenWeatherURL, cfg.OpenWeatherAPIKey, cfg.ProviderTimeout), 1, 3))
		case "open-meteo":
			out = append(out, NewRateLimited(NewOpenMeteoProvider(cfg.OpenMeteoURL, cfg.ProviderTimeout), 2, 5))
		default:
			log.Printf("weather: unknown provider %q in WEATHER_PROVIDER_ORDER, skipping", name)
		}
	}
	return out
}
