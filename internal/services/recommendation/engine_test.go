package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
)

type fakeAdvanced struct {
	items []entities.Recommendation
	err   error
	calls int
}

func (f *fakeAdvanced) Generate(_ context.Context, _ entities.PlantingSession, _ []entities.WeatherObservation, _ *entities.SoilSample) ([]entities.Recommendation, error) {
	f.calls++
	return f.items, f.err
}

func baseInput() GenerateInput {
	planted := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return GenerateInput{
		Session: entities.PlantingSession{
			ID: 7, FarmID: 3, VarietyID: 2, PlantingDate: planted,
			Variety: entities.MaizeVariety{ID: 2, MaturityDays: 120, AvgYield: 5.0},
		},
		Prediction: entities.YieldPrediction{
			ID: "p-1", SessionID: 7, PredictedYield: 4.8, Confidence: 88,
		},
	}
}

func countBy(items []entities.Recommendation, match func(entities.Recommendation) bool) int {
	n := 0
	for _, r := range items {
		if match(r) {
			n++
		}
	}
	return n
}

func TestGenerateCriticalYieldAlwaysEmergency(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.PredictedYield = 1.5
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)

	got := NewEngine(th, nil).Generate(context.Background(), in)

	n := countBy(got, func(r entities.Recommendation) bool {
		return r.Category == entities.CategoryEmergency && r.Priority == entities.PriorityCritical
	})
	if n < 1 {
		t.Errorf("no CRITICAL/EMERGENCY item in %v", got)
	}
}

func TestGenerateMaintenanceOnlyWhenHealthy(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)
	if in.Assessment.NeedsIntervention {
		t.Fatalf("fixture unexpectedly needs intervention: %+v", in.Assessment)
	}

	got := NewEngine(th, nil).Generate(context.Background(), in)

	if len(got) != 2 {
		t.Fatalf("got %d items, want 2 maintenance items", len(got))
	}
	for _, r := range got {
		if r.Priority != entities.PriorityLow {
			t.Errorf("maintenance item %q has priority %s, want LOW", r.Title, r.Priority)
		}
	}
}

func TestGenerateDeduplicatesByTitle(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.PredictedYield = 1.5
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)
	in.Risks = []entities.RiskFactor{entities.RiskDroughtStress, entities.RiskSoilMoistureLow}

	// collaborator returns an item colliding with a local title
	adv := &fakeAdvanced{items: []entities.Recommendation{
		{ID: "a-1", Title: "Increase irrigation frequency", Category: entities.CategoryIrrigation, Priority: entities.PriorityHigh},
		{ID: "a-2", Title: "Scout for armyworm", Category: entities.CategoryCropProtection, Priority: entities.PriorityMedium},
	}}

	engine := NewEngine(th, adv)
	for run := 0; run < 2; run++ {
		got := engine.Generate(context.Background(), in)
		seen := map[string]int{}
		for _, r := range got {
			seen[r.Title]++
		}
		for title, n := range seen {
			if n > 1 {
				t.Errorf("run %d: title %q appeared %d times", run, title, n)
			}
		}
		if seen["Scout for armyworm"] != 1 {
			t.Errorf("run %d: escalation item missing", run)
		}
	}
}

func TestGenerateEscalationFailureSwallowed(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.PredictedYield = 1.5
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)

	adv := &fakeAdvanced{err: errors.New("upstream 503")}
	got := NewEngine(th, adv).Generate(context.Background(), in)

	if adv.calls != 1 {
		t.Errorf("advanced called %d times, want 1", adv.calls)
	}
	if len(got) == 0 {
		t.Error("local recommendations lost when escalation failed")
	}
}

func TestGenerateEscalationSkippedBelowLevelThree(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.Confidence = 60 // level 2 only
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)

	adv := &fakeAdvanced{}
	NewEngine(th, adv).Generate(context.Background(), in)

	if adv.calls != 0 {
		t.Errorf("advanced called %d times below escalation level, want 0", adv.calls)
	}
}

// Forty days in with a dry week: the drought tag must surface as a HIGH
// irrigation item and the growth stage must land in the rapid-growth band.
func TestGenerateDrySpellScenario(t *testing.T) {
	th := prediction.DefaultThresholds()
	planted := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	asOf := planted.AddDate(0, 0, 40)

	session := entities.PlantingSession{
		ID: 7, FarmID: 3, VarietyID: 2, PlantingDate: planted,
		Variety: entities.MaizeVariety{ID: 2, MaturityDays: 120, DroughtResistant: true, AvgYield: 5.0},
	}
	soil := &entities.SoilSample{PH: 6.4, Nitrogen: 22, Phosphorus: 18, Potassium: 40, MoisturePct: 45}

	window := make([]entities.WeatherObservation, 7)
	for i := range window {
		window[i] = entities.WeatherObservation{
			Date: asOf.AddDate(0, 0, i-7), RainfallMM: 3, TempMin: 18, TempMax: 28, TempAvg: 23,
		}
	}

	days := session.DaysSincePlanting(asOf)
	risks := prediction.AnalyzeRisks(window, soil, days, session.Variety.MaturityDays)
	if len(risks) != 1 || risks[0] != entities.RiskDroughtStress {
		t.Fatalf("risks = %v, want [DROUGHT_STRESS]", risks)
	}
	if stage := prediction.StageForDay(days); stage != entities.StageRapidGrowth {
		t.Fatalf("stage = %q, want %q", stage, entities.StageRapidGrowth)
	}

	scored := prediction.NewScorer(42, "v1").Score(prediction.ScoreInput{
		Session: session, Variety: session.Variety, Soil: soil, Weather: window, AsOf: asOf,
	})
	pred := entities.YieldPrediction{
		ID: "p-1", SessionID: 7,
		PredictedYield: scored.PredictedYield, Confidence: scored.Confidence,
	}
	assessment := prediction.Analyze(pred, 5.0, th)

	got := NewEngine(th, nil).Generate(context.Background(), GenerateInput{
		Session: session, Prediction: pred, Assessment: assessment,
		Risks: risks, Window: window, Soil: soil,
	})

	n := countBy(got, func(r entities.Recommendation) bool {
		return r.Category == entities.CategoryIrrigation && r.Priority == entities.PriorityHigh
	})
	if n < 1 {
		t.Errorf("no HIGH irrigation item in %v", got)
	}
}

// No soil, no weather: a 20% deficit classifies as level 3 and the output
// carries a yield-optimization item but no risk-derived items.
func TestGenerateNoDataDeficitScenario(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.PredictedYield = 4.0
	in.Prediction.Confidence = 70
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)
	in.Risks = prediction.AnalyzeRisks(nil, nil, 40, 120)

	if in.Assessment.CriticalityLevel != 3 {
		t.Fatalf("criticality = %d, want 3", in.Assessment.CriticalityLevel)
	}
	if len(in.Risks) != 0 {
		t.Fatalf("risks = %v, want none with no data", in.Risks)
	}

	got := NewEngine(th, nil).Generate(context.Background(), in)

	if n := countBy(got, func(r entities.Recommendation) bool {
		return r.Category == entities.CategoryYieldOptimization
	}); n != 1 {
		t.Errorf("yield-optimization items = %d, want 1", n)
	}
	if n := countBy(got, func(r entities.Recommendation) bool {
		return r.Category == entities.CategoryIrrigation || r.Category == entities.CategoryDrainage ||
			r.Category == entities.CategoryFertilization || r.Category == entities.CategorySoilManagement
	}); n != 0 {
		t.Errorf("risk-derived items = %d, want 0", n)
	}
}

func TestGenerateEmissionOrder(t *testing.T) {
	th := prediction.DefaultThresholds()
	in := baseInput()
	in.Prediction.PredictedYield = 1.5
	in.Prediction.Confidence = 60
	in.Assessment = prediction.Analyze(in.Prediction, 5.0, th)
	in.Risks = []entities.RiskFactor{entities.RiskDroughtStress}

	got := NewEngine(th, nil).Generate(context.Background(), in)
	if len(got) < 4 {
		t.Fatalf("got %d items, want emergency, yield-opt, risk and data-quality", len(got))
	}
	wantOrder := []entities.RecommendationCategory{
		entities.CategoryEmergency,
		entities.CategoryYieldOptimization,
		entities.CategoryIrrigation,
		entities.CategoryDataQuality,
	}
	for i, cat := range wantOrder {
		if got[i].Category != cat {
			t.Errorf("item %d category = %s, want %s", i, got[i].Category, cat)
		}
	}
}
