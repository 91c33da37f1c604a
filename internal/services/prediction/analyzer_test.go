package prediction

import (
	"math"
	"testing"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

func TestAnalyze(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		yield      float64
		confidence float64
		expected   float64
		wantLevel  int
		wantNeeds  bool
		wantDef    float64
	}{
		{"healthy", 5.8, 90, 6.0, 1, false, 100.0 / 30},
		{"below critical yield", 1.5, 90, 6.0, 5, true, 75},
		{"severe deficit", 4.0, 90, 6.0, 4, true, 100.0 / 3},
		{"moderate deficit", 4.8, 90, 6.0, 3, true, 20},
		{"low confidence only", 5.8, 60, 6.0, 2, true, 100.0 / 30},
		{"surplus clamps deficit to zero", 7.0, 90, 6.0, 1, false, 0},
		{"critical beats deficit", 1.0, 90, 6.0, 5, true, 100.0 / 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := entities.YieldPrediction{PredictedYield: tt.yield, Confidence: tt.confidence}
			got := Analyze(pred, tt.expected, th)

			if got.CriticalityLevel != tt.wantLevel {
				t.Errorf("level = %d, want %d", got.CriticalityLevel, tt.wantLevel)
			}
			if got.NeedsIntervention != tt.wantNeeds {
				t.Errorf("needsIntervention = %v, want %v", got.NeedsIntervention, tt.wantNeeds)
			}
			if math.Abs(got.DeficitPct-tt.wantDef) > 1e-9 {
				t.Errorf("deficit = %v, want %v", got.DeficitPct, tt.wantDef)
			}
			if got.ExpectedYield != tt.expected {
				t.Errorf("expectedYield = %v, want %v", got.ExpectedYield, tt.expected)
			}
		})
	}
}

func TestResolveExpectedYield(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		hist    float64
		histOK  bool
		variety entities.MaizeVariety
		want    float64
	}{
		{"historical average wins", 4.2, true, entities.MaizeVariety{AvgYield: 5.0}, 4.2},
		{"variety average next", 0, false, entities.MaizeVariety{AvgYield: 5.0}, 5.0},
		{"optimal target last", 0, false, entities.MaizeVariety{}, th.OptimalYield},
		{"zero historical falls through", 0, true, entities.MaizeVariety{AvgYield: 5.0}, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveExpectedYield(tt.hist, tt.histOK, tt.variety, th); got != tt.want {
				t.Errorf("ResolveExpectedYield() = %v, want %v", got, tt.want)
			}
		})
	}
}
