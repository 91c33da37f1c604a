package recommendation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
	"github.com/agrolytics/maize-advisor/pkg/dedup"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type fakeStore struct {
	session *entities.PlantingSession
	pred    *entities.YieldPrediction
	soil    *entities.SoilSample
	window  []entities.WeatherObservation

	savedBatches [][]entities.Recommendation
}

func (f *fakeStore) SessionByID(_ context.Context, id uint) (*entities.PlantingSession, error) {
	if f.session == nil || f.session.ID != id {
		return nil, &model.NotFoundError{Kind: "planting session", ID: id}
	}
	return f.session, nil
}

func (f *fakeStore) LatestSoilSample(_ context.Context, _ uint) (*entities.SoilSample, error) {
	return f.soil, nil
}

func (f *fakeStore) ObservationsBetween(_ context.Context, _ uint, _, _ time.Time) ([]entities.WeatherObservation, error) {
	return f.window, nil
}

func (f *fakeStore) PredictionByID(_ context.Context, id string) (*entities.YieldPrediction, error) {
	if f.pred == nil || f.pred.ID != id {
		return nil, &model.NotFoundError{Kind: "prediction", ID: id}
	}
	return f.pred, nil
}

func (f *fakeStore) AvgPredictedYield(_ context.Context, _, _ uint) (float64, bool, error) {
	return 0, false, nil
}

func (f *fakeStore) SaveRecommendations(_ context.Context, batch []entities.Recommendation) error {
	f.savedBatches = append(f.savedBatches, batch)
	return nil
}

func triggerFixture() (*Trigger, *fakeStore) {
	planted := time.Now().UTC().AddDate(0, 0, -40)
	store := &fakeStore{
		session: &entities.PlantingSession{
			ID: 7, FarmID: 3, VarietyID: 2, PlantingDate: planted,
			Variety: entities.MaizeVariety{ID: 2, MaturityDays: 120, AvgYield: 5.0},
		},
		pred: &entities.YieldPrediction{
			ID: "p-1", SessionID: 7, PredictedYield: 4.0, Confidence: 72,
		},
	}
	th := prediction.DefaultThresholds()
	trigger := NewTrigger(store, NewEngine(th, nil), th, dedup.New(time.Minute, 100))
	return trigger, store
}

func eventPayload(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(messages.PredictionCompletedEvent{
		UserID: "user-1", SessionID: 7, PredictionID: "p-1",
		PredictedYield: 4.0, Confidence: 72, Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return b
}

func TestTriggerGeneratesAndStores(t *testing.T) {
	trigger, store := triggerFixture()

	msg := &fakeMessage{topic: "event/predictionCompleted/7", payload: eventPayload(t)}
	if err := trigger.Handle(msg.Topic(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(store.savedBatches) != 1 {
		t.Fatalf("saved %d batches, want 1", len(store.savedBatches))
	}
	if len(store.savedBatches[0]) == 0 {
		t.Error("saved batch is empty")
	}
	for _, rec := range store.savedBatches[0] {
		if rec.SessionID != 7 {
			t.Errorf("recommendation filed under session %d, want 7", rec.SessionID)
		}
	}
}

func TestTriggerDropsDuplicateDelivery(t *testing.T) {
	trigger, store := triggerFixture()
	payload := eventPayload(t)

	for i := 0; i < 2; i++ {
		msg := &fakeMessage{topic: "event/predictionCompleted/7", payload: payload}
		if err := trigger.Handle(msg.Topic(), msg); err != nil {
			t.Fatalf("Handle() #%d error = %v", i, err)
		}
	}

	if len(store.savedBatches) != 1 {
		t.Errorf("saved %d batches for a redelivered event, want 1", len(store.savedBatches))
	}
}

func TestTriggerSkipsMalformedPayload(t *testing.T) {
	trigger, store := triggerFixture()

	msg := &fakeMessage{topic: "event/predictionCompleted/7", payload: []byte("{not json")}
	if err := trigger.Handle(msg.Topic(), msg); err != nil {
		t.Fatalf("Handle() error = %v, want malformed payload swallowed", err)
	}
	if len(store.savedBatches) != 0 {
		t.Errorf("saved %d batches for malformed payload, want 0", len(store.savedBatches))
	}
}

func TestTriggerUnknownSessionSwallowed(t *testing.T) {
	trigger, store := triggerFixture()
	store.session = nil

	msg := &fakeMessage{topic: "event/predictionCompleted/7", payload: eventPayload(t)}
	if err := trigger.Handle(msg.Topic(), msg); err != nil {
		t.Fatalf("Handle() error = %v, want lookup failure swallowed", err)
	}
	if len(store.savedBatches) != 0 {
		t.Errorf("saved %d batches, want 0", len(store.savedBatches))
	}
}
