package influx

import (
	"fmt"
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
)

// Writer mirrors accepted observations and prediction events to InfluxDB for
// telemetry. Writes are asynchronous; the error listener records when the
// last write failure happened so health endpoints can report it.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
}

func NewWriter(client influxdb2.Client, org, bucket string) *Writer {
	w := &Writer{
		api:     client.WriteAPI(org, bucket),
		lastErr: time.Now().Add(-24 * time.Hour),
	}
	go func() {
		for err := range w.api.Errors() {
			if err != nil {
				w.mu.Lock()
				w.lastErr = time.Now()
				w.mu.Unlock()
				log.Printf("influx: write error: %v", err)
			}
		}
	}()
	return w
}

// RecordObservation writes one accepted weather observation point.
func (w *Writer) RecordObservation(obs entities.WeatherObservation) {
	if w == nil {
		return
	}
	tags := map[string]string{
		"farm_id": fmt.Sprintf("%d", obs.FarmID),
		"source":  obs.Source,
	}
	fields := map[string]interface{}{
		"temp_min":     obs.TempMin,
		"temp_max":     obs.TempMax,
		"temp_avg":     obs.TempAvg,
		"rainfall_mm":  obs.RainfallMM,
		"humidity_pct": obs.HumidityPct,
		"wind_speed":   obs.WindSpeed,
	}
	w.api.WritePoint(influxdb2.NewPoint("weather_observation", tags, fields, obs.Day()))
}

// RecordPrediction writes one prediction-completed point.
func (w *Writer) RecordPrediction(evt messages.PredictionCompletedEvent) {
	if w == nil {
		return
	}
	tags := map[string]string{
		"session_id": fmt.Sprintf("%d", evt.SessionID),
		"user_id":    evt.UserID,
	}
	fields := map[string]interface{}{
		"predicted_yield": evt.PredictedYield,
		"confidence":      evt.Confidence,
		"count":           int64(1),
	}
	w.api.WritePoint(influxdb2.NewPoint("yield_prediction", tags, fields, evt.Timestamp))
}

// LastErrorAge reports how long ago the last write error happened.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 24 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// Flush forces buffered points out, for shutdown paths.
func (w *Writer) Flush() {
	if w != nil {
		w.api.Flush()
	}
}
