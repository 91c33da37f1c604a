package prediction

import "github.com/agrolytics/maize-advisor/internal/model/entities"

// Thresholds drives the criticality classification. Zero value is unusable;
// construct via DefaultThresholds or from config.
type Thresholds struct {
	CriticalYield    float64 // t/ha, below this is an emergency
	DeficitPct       float64 // percent shortfall that flags intervention
	LowConfidencePct float64 // percent confidence below which data is suspect
	OptimalYield     float64 // t/ha target when no better baseline exists
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalYield:    2.0,
		DeficitPct:       15.0,
		LowConfidencePct: 65.0,
		OptimalYield:     6.0,
	}
}

// Assessment is the classification of one prediction against its baseline.
type Assessment struct {
	NeedsIntervention bool
	CriticalityLevel  int // 1 (healthy) .. 5 (emergency)
	DeficitPct        float64
	ExpectedYield     float64
}

// Analyze classifies a prediction. Criticality is a strict ladder: critical
// yield beats deficit severity beats low confidence.
func Analyze(pred entities.YieldPrediction, expectedYield float64, th Thresholds) Assessment {
	deficit := 0.0
	if expectedYield > 0 {
		deficit = (expectedYield - pred.PredictedYield) / expectedYield * 100
		if deficit < 0 {
			deficit = 0
		}
	}

	level := 1
	switch {
	case pred.PredictedYield < th.CriticalYield:
		level = 5
	case deficit > 2*th.DeficitPct:
		level = 4
	case deficit > th.DeficitPct:
		level = 3
	case pred.Confidence < th.LowConfidencePct:
		level = 2
	}

	needs := pred.PredictedYield < th.CriticalYield ||
		deficit > th.DeficitPct ||
		pred.Confidence < th.LowConfidencePct

	return Assessment{
		NeedsIntervention: needs,
		CriticalityLevel:  level,
		DeficitPct:        deficit,
		ExpectedYield:     expectedYield,
	}
}

// ResolveExpectedYield picks the baseline: historical per-farm/variety average
// when one exists, else the variety's catalog average, else the configured
// optimal target.
func ResolveExpectedYield(histAvg float64, histOK bool, variety entities.MaizeVariety, th Thresholds) float64 {
	if histOK && histAvg > 0 {
		return histAvg
	}
	if variety.AvgYield > 0 {
		return variety.AvgYield
	}
	return th.OptimalYield
}
