package entities

import "time"

// WeatherObservation is one day of weather for one farm. At most one row
// exists per (farm, date); writers must upsert on that key.
type WeatherObservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FarmID         uint      `gorm:"not null;uniqueIndex:idx_farm_date,priority:1" json:"farm_id"`
	Date           time.Time `gorm:"not null;uniqueIndex:idx_farm_date,priority:2" json:"date"`
	TempMin        float64   `json:"temp_min"`
	TempMax        float64   `json:"temp_max"`
	TempAvg        float64   `json:"temp_avg"`
	RainfallMM     float64   `json:"rainfall_mm"`
	HumidityPct    float64   `json:"humidity_pct"`
	WindSpeed      float64   `json:"wind_speed"`
	SolarRadiation float64   `json:"solar_radiation"`
	Source         string    `gorm:"size:64" json:"source"`
}

func (WeatherObservation) TableName() string { return "weather_observations" }

// Day normalizes the observation date to midnight UTC, the canonical form of
// the (farm, date) key.
func (o WeatherObservation) Day() time.Time {
	d := o.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// WeatherAlert is a provider-issued warning. Alerts are relayed to callers
// and never persisted.
type WeatherAlert struct {
	Event       string    `json:"event"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Source      string    `json:"source"`
}
