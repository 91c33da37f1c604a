package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// Plausibility bounds for a daily observation. Values outside these are
// provider glitches, not weather.
const (
	minPlausibleTempC = -50.0
	maxPlausibleTempC = 60.0
	maxPlausibleRain  = 500.0 // mm/day
	maxPlausibleWind  = 150.0
)

// Validator gates observations before the acquirer accepts them. Validate
// rejects impossible data; Sanitize normalizes accepted data. A rejected
// observation is discarded, never corrected into acceptance.
type Validator struct{}

func (Validator) Validate(obs entities.WeatherObservation) error {
	if obs.Date.IsZero() {
		return &model.ValidationError{Field: "date", Reason: "missing"}
	}
	if obs.Date.After(time.Now().UTC().Add(24 * time.Hour)) {
		// forecast rows carry future dates; anything further out than the
		// provider's own horizon start is suspect for a single observation
		if obs.Date.After(time.Now().UTC().Add(17 * 24 * time.Hour)) {
			return &model.ValidationError{Field: "date", Reason: "too far in the future"}
		}
	}
	for name, t := range map[string]float64{"temp_min": obs.TempMin, "temp_max": obs.TempMax, "temp_avg": obs.TempAvg} {
		if t < minPlausibleTempC || t > maxPlausibleTempC {
			return &model.ValidationError{Field: name, Reason: fmt.Sprintf("%.1f outside [%.0f, %.0f]", t, minPlausibleTempC, maxPlausibleTempC)}
		}
	}
	if obs.TempMin > obs.TempMax {
		return &model.ValidationError{Field: "temp_min", Reason: "greater than temp_max"}
	}
	if obs.RainfallMM < 0 || obs.RainfallMM > maxPlausibleRain {
		return &model.ValidationError{Field: "rainfall_mm", Reason: fmt.Sprintf("%.1f outside [0, %.0f]", obs.RainfallMM, maxPlausibleRain)}
	}
	if obs.HumidityPct < 0 || obs.HumidityPct > 100 {
		return &model.ValidationError{Field: "humidity_pct", Reason: "outside [0, 100]"}
	}
	if obs.WindSpeed < 0 || obs.WindSpeed > maxPlausibleWind {
		return &model.ValidationError{Field: "wind_speed", Reason: fmt.Sprintf("%.1f outside [0, %.0f]", obs.WindSpeed, maxPlausibleWind)}
	}
	return nil
}

// Sanitize normalizes an already-valid observation: canonical date, ordered
// temperatures, trimmed source tag.
func (Validator) Sanitize(obs entities.WeatherObservation) entities.WeatherObservation {
	obs.Date = obs.Day()
	if obs.TempAvg < obs.TempMin {
		obs.TempAvg = obs.TempMin
	}
	if obs.TempAvg > obs.TempMax {
		obs.TempAvg = obs.TempMax
	}
	obs.Source = strings.TrimSpace(strings.ToLower(obs.Source))
	return obs
}
