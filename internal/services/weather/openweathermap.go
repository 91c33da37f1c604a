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

const owmSource = "openweathermap"

// OWMProvider fetches from the OpenWeatherMap One Call API.
type OWMProvider struct {
	base   string
	apiKey string
	client *http.Client
}

func NewOWMProvider(base, apiKey string, timeout time.Duration) *OWMProvider {
	return &OWMProvider{
		base:   base,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *OWMProvider) Name() string { return owmSource }

type owmTemp struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Day float64 `json:"day"`
}

type owmDaily struct {
	Dt       int64   `json:"dt"`
	Temp     owmTemp `json:"temp"`
	Rain     float64 `json:"rain"`
	Humidity float64 `json:"humidity"`
	WindSpd  float64 `json:"wind_speed"`
	UVI      float64 `json:"uvi"`
}

type owmAlert struct {
	SenderName  string `json:"sender_name"`
	Event       string `json:"event"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Description string `json:"description"`
}

type owmOneCall struct {
	Daily  []owmDaily `json:"daily"`
	Alerts []owmAlert `json:"alerts"`
}

func (p *OWMProvider) getOneCall(ctx context.Context, farm entities.Farm, extra string) (*owmOneCall, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: missing api key", owmSource)
	}
	url := fmt.Sprintf("%s/data/3.0/onecall?lat=%f&lon=%f&exclude=minutely,hourly&units=metric&appid=%s%s",
		p.base, farm.Latitude, farm.Longitude, p.apiKey, extra)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", owmSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%s: status %d: %s", owmSource, resp.StatusCode, string(b))
	}
	var out owmOneCall
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", owmSource, err)
	}
	return &out, nil
}

func (p *OWMProvider) observationFromDaily(farm entities.Farm, d owmDaily) entities.WeatherObservation {
	t := time.Unix(d.Dt, 0).UTC()
	return entities.WeatherObservation{
		FarmID:         farm.ID,
		Date:           time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		TempMin:        d.Temp.Min,
		TempMax:        d.Temp.Max,
		TempAvg:        d.Temp.Day,
		RainfallMM:     d.Rain,
		HumidityPct:    d.Humidity,
		WindSpeed:      d.WindSpd,
		SolarRadiation: d.UVI,
		Source:         owmSource,
	}
}

func (p *OWMProvider) FetchCurrent(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error) {
	out, err := p.getOneCall(ctx, farm, "")
	if err != nil {
		return nil, err
	}
	if len(out.Daily) == 0 {
		return nil, nil
	}
	obs := p.observationFromDaily(farm, out.Daily[0])
	return &obs, nil
}

func (p *OWMProvider) FetchForecast(ctx context.Context, farm entities.Farm, days int) ([]entities.WeatherObservation, error) {
	out, err := p.getOneCall(ctx, farm, "")
	if err != nil {
		return nil, err
	}
	obs := make([]entities.WeatherObservation, 0, days)
	for i, d := range out.Daily {
		if i >= days {
			break
		}
		obs = append(obs, p.observationFromDaily(farm, d))
	}
	return obs, nil
}

func (p *OWMProvider) FetchHistorical(ctx context.Context, farm entities.Farm, date time.Time) (*entities.WeatherObservation, error) {
	// The timemachine endpoint returns hourly data; the daily aggregation
	// endpoint gives us the day summary directly.
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: missing api key", owmSource)
	}
	url := fmt.Sprintf("%s/data/3.0/onecall/day_summary?lat=%f&lon=%f&date=%s&units=metric&appid=%s",
		p.base, farm.Latitude, farm.Longitude, date.UTC().Format("2006-01-02"), p.apiKey)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", owmSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%s: status %d: %s", owmSource, resp.StatusCode, string(b))
	}
	var day struct {
		Date        string `json:"date"`
		Temperature struct {
			Min       float64 `json:"min"`
			Max       float64 `json:"max"`
			Afternoon float64 `json:"afternoon"`
		} `json:"temperature"`
		Precipitation struct {
			Total float64 `json:"total"`
		} `json:"precipitation"`
		Humidity struct {
			Afternoon float64 `json:"afternoon"`
		} `json:"humidity"`
		Wind struct {
			Max struct {
				Speed float64 `json:"speed"`
			} `json:"max"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&day); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", owmSource, err)
	}
	d := date.UTC()
	return &entities.WeatherObservation{
		FarmID:      farm.ID,
		Date:        time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		TempMin:     day.Temperature.Min,
		TempMax:     day.Temperature.Max,
		TempAvg:     (day.Temperature.Min + day.Temperature.Max) / 2,
		RainfallMM:  day.Precipitation.Total,
		HumidityPct: day.Humidity.Afternoon,
		WindSpeed:   day.Wind.Max.Speed,
		Source:      owmSource,
	}, nil
}

func (p *OWMProvider) FetchAlerts(ctx context.Context, farm entities.Farm) ([]entities.WeatherAlert, error) {
	out, err := p.getOneCall(ctx, farm, "")
	if err != nil {
		return nil, err
	}
	alerts := make([]entities.WeatherAlert, 0, len(out.Alerts))
	for _, a := range out.Alerts {
		alerts = append(alerts, entities.WeatherAlert{
			Event:       a.Event,
			Severity:    "warning",
			Description: a.Description,
			Start:       time.Unix(a.Start, 0).UTC(),
			End:         time.Unix(a.End, 0).UTC(),
			Source:      owmSource,
		})
	}
	return alerts, nil
}

var _ Provider = (*OWMProvider)(nil)
