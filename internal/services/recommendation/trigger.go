package recommendation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
	"github.com/agrolytics/maize-advisor/pkg/dedup"
)

// Store is the persistence slice the trigger reads and writes.
type Store interface {
	SessionByID(ctx context.Context, id uint) (*entities.PlantingSession, error)
	LatestSoilSample(ctx context.Context, farmID uint) (*entities.SoilSample, error)
	ObservationsBetween(ctx context.Context, farmID uint, from, to time.Time) ([]entities.WeatherObservation, error)
	PredictionByID(ctx context.Context, id string) (*entities.YieldPrediction, error)
	AvgPredictedYield(ctx context.Context, farmID, varietyID uint) (float64, bool, error)
	SaveRecommendations(ctx context.Context, batch []entities.Recommendation) error
}

const (
	recentWindowDays = 7
	handleTimeout    = 2 * time.Minute
)

// Trigger consumes prediction-completed events and runs the engine for each
// one. Handler errors are logged and swallowed so a bad event can never stall
// the subscription; QoS1 redeliveries are dropped by payload hash.
type Trigger struct {
	store  Store
	engine *Engine
	th     prediction.Thresholds
	seen   *dedup.Deduper
}

func NewTrigger(store Store, engine *Engine, th prediction.Thresholds, seen *dedup.Deduper) *Trigger {
	return &Trigger{store: store, engine: engine, th: th, seen: seen}
}

// Handle is the MQTT consumer callback.
func (t *Trigger) Handle(topic string, msg mqtt.Message) error {
	sum := sha256.Sum256(msg.Payload())
	if !t.seen.ShouldProcess(hex.EncodeToString(sum[:])) {
		log.Printf("recommendation: duplicate delivery on %s, skipping", topic)
		return nil
	}

	var evt messages.PredictionCompletedEvent
	if err := json.Unmarshal(msg.Payload(), &evt); err != nil {
		log.Printf("recommendation: malformed event on %s, skipping: %v", topic, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := t.process(ctx, evt); err != nil {
		log.Printf("recommendation: processing session %d failed: %v", evt.SessionID, err)
	}
	return nil
}

func (t *Trigger) process(ctx context.Context, evt messages.PredictionCompletedEvent) error {
	session, err := t.store.SessionByID(ctx, evt.SessionID)
	if err != nil {
		return err
	}

	pred, err := t.store.PredictionByID(ctx, evt.PredictionID)
	if err != nil {
		return err
	}

	soil, err := t.store.LatestSoilSample(ctx, session.FarmID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	window, err := t.store.ObservationsBetween(ctx, session.FarmID, now.AddDate(0, 0, -recentWindowDays), now)
	if err != nil {
		return err
	}

	histAvg, histOK, err := t.store.AvgPredictedYield(ctx, session.FarmID, session.VarietyID)
	if err != nil {
		return err
	}
	expected := prediction.ResolveExpectedYield(histAvg, histOK, session.Variety, t.th)
	assessment := prediction.Analyze(*pred, expected, t.th)
	risks := prediction.AnalyzeRisks(window, soil, session.DaysSincePlanting(now), session.Variety.MaturityDays)

	batch := t.engine.Generate(ctx, GenerateInput{
		Session:    *session,
		Prediction: *pred,
		Assessment: assessment,
		Risks:      risks,
		Window:     window,
		Soil:       soil,
	})
	if len(batch) == 0 {
		return nil
	}
	if err := t.store.SaveRecommendations(ctx, batch); err != nil {
		return err
	}

	log.Printf("recommendation: session %d -> %d items (criticality %d, deficit %.0f%%)",
		session.ID, len(batch), assessment.CriticalityLevel, assessment.DeficitPct)
	return nil
}
