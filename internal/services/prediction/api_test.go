package prediction

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

type fakeRecReader struct {
	items []entities.Recommendation
}

func (f *fakeRecReader) RecommendationsBySession(_ context.Context, _ uint) ([]entities.Recommendation, error) {
	return f.items, nil
}

func testRouter(sessions *fakeSessionStore, preds *fakePredictionStore) http.Handler {
	svc := NewService(sessions, &fakeSoilStore{}, nil, preds, NewScorer(42, "v1"), nil)
	return NewRouter(svc, preds, &fakeRecReader{}, slog.Default())
}

func TestPostPrediction(t *testing.T) {
	preds := &fakePredictionStore{}
	router := testRouter(&fakeSessionStore{session: testSession()}, preds)

	req, _ := http.NewRequest(http.MethodPost, "/v1/sessions/7/predictions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var got entities.YieldPrediction
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.SessionID != 7 {
		t.Errorf("sessionID = %d, want 7", got.SessionID)
	}
	if got.Confidence < 70 || got.Confidence > 95 {
		t.Errorf("confidence = %v, outside [70, 95]", got.Confidence)
	}
	if len(preds.saved) != 1 {
		t.Errorf("saved %d predictions, want 1", len(preds.saved))
	}
}

func TestPostPredictionUnknownSession(t *testing.T) {
	sessions := &fakeSessionStore{err: &model.NotFoundError{Kind: "planting session", ID: uint(99)}}
	router := testRouter(sessions, &fakePredictionStore{})

	req, _ := http.NewRequest(http.MethodPost, "/v1/sessions/99/predictions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPostPredictionBadID(t *testing.T) {
	router := testRouter(&fakeSessionStore{session: testSession()}, &fakePredictionStore{})

	req, _ := http.NewRequest(http.MethodPost, "/v1/sessions/abc/predictions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetPredictionHistory(t *testing.T) {
	preds := &fakePredictionStore{history: []entities.YieldPrediction{
		{ID: "p-2", SessionID: 7, PredictedYield: 5.1},
		{ID: "p-1", SessionID: 7, PredictedYield: 4.9},
	}}
	router := testRouter(&fakeSessionStore{session: testSession()}, preds)

	req, _ := http.NewRequest(http.MethodGet, "/v1/sessions/7/predictions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []entities.YieldPrediction
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("history length = %d, want 2", len(got))
	}
}

func TestGetSessionRecommendations(t *testing.T) {
	svc := NewService(&fakeSessionStore{session: testSession()}, &fakeSoilStore{}, nil, &fakePredictionStore{}, NewScorer(42, "v1"), nil)
	recs := &fakeRecReader{items: []entities.Recommendation{
		{ID: "r-1", SessionID: 7, Category: entities.CategoryMaintenance, Priority: entities.PriorityLow, Title: "Continue current practices"},
	}}
	router := NewRouter(svc, &fakePredictionStore{}, recs, slog.Default())

	req, _ := http.NewRequest(http.MethodGet, "/v1/sessions/7/recommendations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []entities.Recommendation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Continue current practices" {
		t.Errorf("items = %v, want the stored recommendation", got)
	}
}

func TestGetUnknownPrediction(t *testing.T) {
	router := testRouter(&fakeSessionStore{session: testSession()}, &fakePredictionStore{})

	req, _ := http.NewRequest(http.MethodGet, "/v1/predictions/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(&fakeSessionStore{session: testSession()}, &fakePredictionStore{})

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
