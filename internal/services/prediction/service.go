package prediction

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
	"github.com/agrolytics/maize-advisor/pkg/rabbitmq"
)

// SessionStore resolves planting sessions with farm and variety preloaded.
type SessionStore interface {
	SessionByID(ctx context.Context, id uint) (*entities.PlantingSession, error)
}

// SoilStore returns the latest soil sample for a farm, nil when none exists.
type SoilStore interface {
	LatestSoilSample(ctx context.Context, farmID uint) (*entities.SoilSample, error)
}

// WeatherSource is the slice of the weather acquirer the scorer needs: an
// optional refresh plus the stored recent window.
type WeatherSource interface {
	FetchAndStore(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error)
	RecentWindow(ctx context.Context, farmID uint, days int) ([]entities.WeatherObservation, error)
}

// PredictionStore persists and reads back prediction runs.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p *entities.YieldPrediction) error
	PredictionByID(ctx context.Context, id string) (*entities.YieldPrediction, error)
	PredictionsBySession(ctx context.Context, sessionID uint) ([]entities.YieldPrediction, error)
	AvgPredictedYield(ctx context.Context, farmID, varietyID uint) (float64, bool, error)
}

// PredictionSink receives every completed prediction for telemetry. May be
// nil.
type PredictionSink interface {
	RecordPrediction(evt messages.PredictionCompletedEvent)
}

// Service orchestrates one prediction run: load inputs, refresh weather,
// score, persist, notify.
type Service struct {
	sessions SessionStore
	soil     SoilStore
	weather  WeatherSource // optional
	preds    PredictionStore
	scorer   *Scorer
	bus      rabbitmq.IPublisher // optional
	sink     PredictionSink      // optional
}

func NewService(sessions SessionStore, soil SoilStore, weather WeatherSource, preds PredictionStore, scorer *Scorer, bus rabbitmq.IPublisher) *Service {
	return &Service{sessions: sessions, soil: soil, weather: weather, preds: preds, scorer: scorer, bus: bus}
}

// WithTelemetry attaches a telemetry sink for completed predictions.
func (s *Service) WithTelemetry(sink PredictionSink) *Service {
	s.sink = sink
	return s
}

// Predict runs the scoring model for one session as of the given time and
// stores the result. Weather refresh and event publication are best-effort;
// everything else that fails comes back as a typed error.
func (s *Service) Predict(ctx context.Context, sessionID uint, asOf time.Time) (*entities.YieldPrediction, error) {
	session, err := s.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.weather != nil {
		if _, err := s.weather.FetchAndStore(ctx, session.Farm); err != nil {
			log.Printf("prediction: weather refresh for farm %d failed, using stored window: %v", session.FarmID, err)
		}
	}

	soil, err := s.soil.LatestSoilSample(ctx, session.FarmID)
	if err != nil {
		return nil, &model.PredictionError{SessionID: sessionID, Err: fmt.Errorf("load soil sample: %w", err)}
	}

	var window []entities.WeatherObservation
	if s.weather != nil {
		window, err = s.weather.RecentWindow(ctx, session.FarmID, riskWindowDays)
		if err != nil {
			return nil, &model.PredictionError{SessionID: sessionID, Err: fmt.Errorf("load weather window: %w", err)}
		}
	}

	result := s.scorer.Score(ScoreInput{
		Session: *session,
		Variety: session.Variety,
		Soil:    soil,
		Weather: window,
		AsOf:    asOf,
	})

	pred := &entities.YieldPrediction{
		ID:             uuid.New().String(),
		SessionID:      session.ID,
		PredictionDate: asOf,
		PredictedYield: result.PredictedYield,
		Confidence:     result.Confidence,
		ModelVersion:   s.scorer.Version(),
		FeaturesUsed:   result.FeaturesUsed,
		Factors:        result.Factors,
	}
	if err := s.preds.SavePrediction(ctx, pred); err != nil {
		return nil, &model.PredictionError{SessionID: sessionID, Err: fmt.Errorf("store prediction: %w", err)}
	}
	log.Printf("prediction: session %d scored %.2f t/ha (confidence %.1f%%, stage %q)",
		session.ID, pred.PredictedYield, pred.Confidence, result.GrowthStage)

	s.notify(session, pred)
	return pred, nil
}

// History returns all prediction runs for a session, newest first.
func (s *Service) History(ctx context.Context, sessionID uint) ([]entities.YieldPrediction, error) {
	if _, err := s.sessions.SessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.preds.PredictionsBySession(ctx, sessionID)
}

// notify publishes the completion event and mirrors it to telemetry.
// Consumers are decoupled workers, so a publish failure is logged and never
// fails the prediction.
func (s *Service) notify(session *entities.PlantingSession, pred *entities.YieldPrediction) {
	evt := messages.PredictionCompletedEvent{
		UserID:         session.Farm.OwnerID,
		SessionID:      session.ID,
		PredictionID:   pred.ID,
		PredictedYield: pred.PredictedYield,
		Confidence:     pred.Confidence,
		Timestamp:      time.Now().UTC(),
	}
	if s.sink != nil {
		s.sink.RecordPrediction(evt)
	}
	if s.bus == nil {
		return
	}
	topic := fmt.Sprintf("event/predictionCompleted/%d", session.ID)
	if err := s.bus.PublishToQos(topic, 1, false, evt); err != nil {
		log.Printf("prediction: publish completion event for session %d failed: %v", session.ID, err)
	}
}
