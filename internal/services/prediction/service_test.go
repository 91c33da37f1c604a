package prediction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
)

type fakeSessionStore struct {
	session *entities.PlantingSession
	err     error
}

func (f *fakeSessionStore) SessionByID(_ context.Context, id uint) (*entities.PlantingSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeSoilStore struct {
	sample *entities.SoilSample
	err    error
}

func (f *fakeSoilStore) LatestSoilSample(_ context.Context, _ uint) (*entities.SoilSample, error) {
	return f.sample, f.err
}

type fakeWeatherSource struct {
	window   []entities.WeatherObservation
	fetchErr error
	fetches  int
}

func (f *fakeWeatherSource) FetchAndStore(_ context.Context, _ entities.Farm) (*entities.WeatherObservation, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &entities.WeatherObservation{}, nil
}

func (f *fakeWeatherSource) RecentWindow(_ context.Context, _ uint, _ int) ([]entities.WeatherObservation, error) {
	return f.window, nil
}

type fakePredictionStore struct {
	saved   []*entities.YieldPrediction
	saveErr error
	history []entities.YieldPrediction
}

func (f *fakePredictionStore) SavePrediction(_ context.Context, p *entities.YieldPrediction) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakePredictionStore) PredictionByID(_ context.Context, id string) (*entities.YieldPrediction, error) {
	return nil, &model.NotFoundError{Kind: "prediction", ID: id}
}

func (f *fakePredictionStore) PredictionsBySession(_ context.Context, _ uint) ([]entities.YieldPrediction, error) {
	return f.history, nil
}

func (f *fakePredictionStore) AvgPredictedYield(_ context.Context, _, _ uint) (float64, bool, error) {
	return 0, false, nil
}

type fakePublisher struct {
	published []any
	err       error
}

func (f *fakePublisher) Publish(v any) error { return f.PublishToQos("", 1, false, v) }

func (f *fakePublisher) PublishToQos(_ string, _ byte, _ bool, v any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, v)
	return nil
}

func (f *fakePublisher) Close() {}

func testSession() *entities.PlantingSession {
	planted := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &entities.PlantingSession{
		ID:           7,
		FarmID:       3,
		VarietyID:    2,
		PlantingDate: planted,
		Farm:         entities.Farm{ID: 3, OwnerID: "user-1"},
		Variety:      entities.MaizeVariety{ID: 2, MaturityDays: 120, AvgYield: 5.0},
	}
}

func TestPredictStoresAndPublishes(t *testing.T) {
	sessions := &fakeSessionStore{session: testSession()}
	preds := &fakePredictionStore{}
	bus := &fakePublisher{}
	weather := &fakeWeatherSource{window: weatherWindow(7, 10, 25)}

	svc := NewService(sessions, &fakeSoilStore{sample: healthySoil()}, weather, preds, NewScorer(42, "v1"), bus)

	asOf := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	pred, err := svc.Predict(context.Background(), 7, asOf)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.ID == "" {
		t.Error("prediction has no id")
	}
	if pred.SessionID != 7 {
		t.Errorf("sessionID = %d, want 7", pred.SessionID)
	}
	if pred.ModelVersion != "v1" {
		t.Errorf("modelVersion = %q, want v1", pred.ModelVersion)
	}
	if len(preds.saved) != 1 {
		t.Fatalf("saved %d predictions, want 1", len(preds.saved))
	}
	if weather.fetches != 1 {
		t.Errorf("weather refreshed %d times, want 1", weather.fetches)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
}

func TestPredictUnknownSession(t *testing.T) {
	sessions := &fakeSessionStore{err: &model.NotFoundError{Kind: "planting session", ID: uint(99)}}
	svc := NewService(sessions, &fakeSoilStore{}, nil, &fakePredictionStore{}, NewScorer(42, "v1"), nil)

	_, err := svc.Predict(context.Background(), 99, time.Now())
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestPredictWeatherRefreshFailureIsTolerated(t *testing.T) {
	weather := &fakeWeatherSource{
		fetchErr: &model.ExternalServiceError{Service: "weather-acquirer", Err: errors.New("down")},
	}
	svc := NewService(&fakeSessionStore{session: testSession()}, &fakeSoilStore{}, weather, &fakePredictionStore{}, NewScorer(42, "v1"), nil)

	if _, err := svc.Predict(context.Background(), 7, time.Now()); err != nil {
		t.Fatalf("Predict() error = %v, want refresh failure swallowed", err)
	}
}

func TestPredictPublishFailureIsTolerated(t *testing.T) {
	bus := &fakePublisher{err: errors.New("broker down")}
	preds := &fakePredictionStore{}
	svc := NewService(&fakeSessionStore{session: testSession()}, &fakeSoilStore{}, nil, preds, NewScorer(42, "v1"), bus)

	if _, err := svc.Predict(context.Background(), 7, time.Now()); err != nil {
		t.Fatalf("Predict() error = %v, want publish failure swallowed", err)
	}
	if len(preds.saved) != 1 {
		t.Errorf("saved %d predictions, want 1", len(preds.saved))
	}
}

type fakeSink struct {
	recorded []messages.PredictionCompletedEvent
}

func (f *fakeSink) RecordPrediction(evt messages.PredictionCompletedEvent) {
	f.recorded = append(f.recorded, evt)
}

func TestPredictRecordsTelemetry(t *testing.T) {
	sink := &fakeSink{}
	svc := NewService(&fakeSessionStore{session: testSession()}, &fakeSoilStore{}, nil, &fakePredictionStore{}, NewScorer(42, "v1"), nil).
		WithTelemetry(sink)

	if _, err := svc.Predict(context.Background(), 7, time.Now()); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(sink.recorded) != 1 {
		t.Fatalf("recorded %d telemetry points, want 1", len(sink.recorded))
	}
	if sink.recorded[0].SessionID != 7 || sink.recorded[0].UserID != "user-1" {
		t.Errorf("telemetry event = %+v, want session 7 / user-1", sink.recorded[0])
	}
}

func TestPredictSaveFailureIsTyped(t *testing.T) {
	preds := &fakePredictionStore{saveErr: errors.New("disk full")}
	svc := NewService(&fakeSessionStore{session: testSession()}, &fakeSoilStore{}, nil, preds, NewScorer(42, "v1"), nil)

	_, err := svc.Predict(context.Background(), 7, time.Now())
	var pe *model.PredictionError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want PredictionError", err)
	}
	if pe.SessionID != 7 {
		t.Errorf("sessionID = %d, want 7", pe.SessionID)
	}
}
