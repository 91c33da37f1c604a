package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

const openMeteoSource = "open-meteo"

// OpenMeteoProvider fetches from the keyless Open-Meteo forecast API. It is
// the usual fallback behind OpenWeatherMap since it needs no credentials.
type OpenMeteoProvider struct {
	base   string
	client *http.Client
}

func NewOpenMeteoProvider(base string, timeout time.Duration) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *OpenMeteoProvider) Name() string { return openMeteoSource }

type openMeteoDaily struct {
	Time            []string  `json:"time"`
	TempMax         []float64 `json:"temperature_2m_max"`
	TempMin         []float64 `json:"temperature_2m_min"`
	TempMean        []float64 `json:"temperature_2m_mean"`
	PrecipSum       []float64 `json:"precipitation_sum"`
	HumidityMean    []float64 `json:"relative_humidity_2m_mean"`
	WindMax         []float64 `json:"wind_speed_10m_max"`
	ShortwaveRadSum []float64 `json:"shortwave_radiation_sum"`
}

type openMeteoResp struct {
	Daily openMeteoDaily `json:"daily"`
}

const openMeteoDailyVars = "temperature_2m_max,temperature_2m_min,temperature_2m_mean," +
	"precipitation_sum,relative_humidity_2m_mean,wind_speed_10m_max,shortwave_radiation_sum"

func (p *OpenMeteoProvider) get(ctx context.Context, url string) (*openMeteoResp, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", openMeteoSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%s: status %d: %s", openMeteoSource, resp.StatusCode, string(b))
	}
	var out openMeteoResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", openMeteoSource, err)
	}
	return &out, nil
}

func (p *OpenMeteoProvider) observations(farm entities.Farm, d openMeteoDaily) []entities.WeatherObservation {
	at := func(vals []float64, i int) float64 {
		if i < len(vals) {
			return vals[i]
		}
		return 0
	}
	out := make([]entities.WeatherObservation, 0, len(d.Time))
	for i, ts := range d.Time {
		day, err := time.Parse("2006-01-02", ts)
		if err != nil {
			continue
		}
		out = append(out, entities.WeatherObservation{
			FarmID:         farm.ID,
			Date:           day.UTC(),
			TempMin:        at(d.TempMin, i),
			TempMax:        at(d.TempMax, i),
			TempAvg:        at(d.TempMean, i),
			RainfallMM:     at(d.PrecipSum, i),
			HumidityPct:    at(d.HumidityMean, i),
			WindSpeed:      at(d.WindMax, i),
			SolarRadiation: at(d.ShortwaveRadSum, i),
			Source:         openMeteoSource,
		})
	}
	return out
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&daily=%s&forecast_days=1&timezone=UTC",
		p.base, farm.Latitude, farm.Longitude, openMeteoDailyVars)
	out, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}
	obs := p.observations(farm, out.Daily)
	if len(obs) == 0 {
		return nil, nil
	}
	return &obs[0], nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, farm entities.Farm, days int) ([]entities.WeatherObservation, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&daily=%s&forecast_days=%d&timezone=UTC",
		p.base, farm.Latitude, farm.Longitude, openMeteoDailyVars, days)
	out, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}
	obs := p.observations(farm, out.Daily)
	if len(obs) > days {
		obs = obs[:days]
	}
	return obs, nil
}

func (p *OpenMeteoProvider) FetchHistorical(ctx context.Context, farm entities.Farm, date time.Time) (*entities.WeatherObservation, error) {
	day := date.UTC().Format("2006-01-02")
	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&daily=%s&start_date=%s&end_date=%s&timezone=UTC",
		p.base, farm.Latitude, farm.Longitude, openMeteoDailyVars, day, day)
	out, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}
	obs := p.observations(farm, out.Daily)
	if len(obs) == 0 {
		return nil, nil
	}
	return &obs[0], nil
}

// FetchAlerts returns empty: Open-Meteo publishes no alert feed.
func (p *OpenMeteoProvider) FetchAlerts(_ context.Context, _ entities.Farm) ([]entities.WeatherAlert, error) {
	return nil, nil
}

var _ Provider = (*OpenMeteoProvider)(nil)
