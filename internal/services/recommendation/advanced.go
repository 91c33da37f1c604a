package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// HTTPAdvancedProvider calls an external advisory service over REST, guarded
// by a circuit breaker so a flapping collaborator stops being dialed instead
// of slowing every escalation down to its timeout.
type HTTPAdvancedProvider struct {
	base string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

func NewHTTPAdvancedProvider(baseURL string, timeout time.Duration) *HTTPAdvancedProvider {
	return &HTTPAdvancedProvider{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
		cb:   mkCB("advanced-recommendation", 3, 30*time.Second),
	}
}

func mkCB(name string, fails uint32, open time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
	})
}

type advancedRequest struct {
	Session       entities.PlantingSession      `json:"session"`
	RecentWeather []entities.WeatherObservation `json:"recent_weather"`
	LatestSoil    *entities.SoilSample          `json:"latest_soil,omitempty"`
}

// Generate posts the session context and decodes the returned batch. Session
// IDs are stamped locally so a sloppy collaborator cannot misfile items.
func (p *HTTPAdvancedProvider) Generate(ctx context.Context, session entities.PlantingSession, recentWeather []entities.WeatherObservation, latestSoil *entities.SoilSample) ([]entities.Recommendation, error) {
	body, err := json.Marshal(advancedRequest{Session: session, RecentWeather: recentWeather, LatestSoil: latestSoil})
	if err != nil {
		return nil, fmt.Errorf("marshal escalation request: %w", err)
	}

	res, err := p.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/recommendations", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("POST %s/recommendations -> %s", p.base, resp.Status)
		}

		var out []entities.Recommendation
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode escalation response: %w", err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items := res.([]entities.Recommendation)
	for i := range items {
		items[i].SessionID = session.ID
	}
	return items, nil
}
