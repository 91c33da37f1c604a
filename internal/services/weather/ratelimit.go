package weather

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// RateLimited wraps a Provider with a token-bucket limiter so retry storms
// cannot exceed a provider's request quota. rps may be fractional.
type RateLimited struct {
	provider Provider
	limiter  *rate.Limiter
}

func NewRateLimited(provider Provider, rps float64, burst int) *RateLimited {
	return &RateLimited{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) Name() string { return r.provider.Name() }

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", r.provider.Name(), err)
	}
	return nil
}

func (r *RateLimited) FetchCurrent(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.FetchCurrent(ctx, farm)
}

func (r *RateLimited) FetchForecast(ctx context.Context, farm entities.Farm, days int) ([]entities.WeatherObservation, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.FetchForecast(ctx, farm, days)
}

func (r *RateLimited) FetchHistorical(ctx context.Context, farm entities.Farm, date time.Time) (*entities.WeatherObservation, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.FetchHistorical(ctx, farm, date)
}

func (r *RateLimited) FetchAlerts(ctx context.Context, farm entities.Farm) ([]entities.WeatherAlert, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.FetchAlerts(ctx, farm)
}

var _ Provider = (*RateLimited)(nil)
