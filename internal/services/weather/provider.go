package weather

import (
	"context"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// Provider is one external weather data source. Every method may fail or
// return empty data; the acquirer owns retry, fallback and validation.
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error)
	FetchForecast(ctx context.Context, farm entities.Farm, days int) ([]entities.WeatherObservation, error)
	FetchHistorical(ctx context.Context, farm entities.Farm, date time.Time) (*entities.WeatherObservation, error)
	FetchAlerts(ctx context.Context, farm entities.Farm) ([]entities.WeatherAlert, error)
}
