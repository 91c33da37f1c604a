package prediction

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// Scoring constants. The model is a deterministic heuristic, not a trained
// estimator: every factor is a documented band so outputs stay auditable.
const (
	baseYieldMin = 4.5 // t/ha
	baseYieldMax = 6.0 // t/ha

	optimalPH   = 6.5
	phFloor     = 0.7
	omFloor     = 0.8
	omCeil      = 1.2
	npkFloor    = 0.7
	npkCeil     = 1.3
	rainOptLow  = 5.0  // mm/day average
	rainOptHigh = 15.0 // mm/day average
	tempOptLow  = 20.0 // °C
	tempOptHigh = 30.0 // °C

	droughtResistantBonus = 1.1

	confidenceBase   = 70.0
	confidenceSpread = 20.0 // scaled by data completeness
	confidenceJitter = 5.0  // upper bound of the seeded jitter draw
)

// ScoreInput carries everything the scorer consults. Soil and Weather are
// optional; their absence lowers data completeness instead of failing.
type ScoreInput struct {
	Session entities.PlantingSession
	Variety entities.MaizeVariety
	Soil    *entities.SoilSample
	Weather []entities.WeatherObservation
	AsOf    time.Time
}

// ScoreResult is the full, explainable output of one scoring run.
type ScoreResult struct {
	PredictedYield float64
	Confidence     float64
	GrowthStage    entities.GrowthStage
	FeaturesUsed   []string
	Factors        map[string]float64
}

// Scorer computes yield predictions. It is stateless apart from the seed:
// identical inputs and seed produce bit-identical output.
type Scorer struct {
	seed    uint64
	version string
}

func NewScorer(seed uint64, version string) *Scorer {
	return &Scorer{seed: seed, version: version}
}

func (s *Scorer) Version() string { return s.version }

// Score combines base yield with soil, weather, growth-stage and variety
// factors. The base yield comes from a seeded generator standing in for a
// trained model; with a fixed seed it is the same every run by contract.
func (s *Scorer) Score(in ScoreInput) ScoreResult {
	rng := rand.New(rand.NewPCG(s.seed, s.seed))
	base := baseYieldMin + rng.Float64()*(baseYieldMax-baseYieldMin)
	jitter := rng.Float64() * confidenceJitter

	days := in.Session.DaysSincePlanting(in.AsOf)

	soil, haveSoil := soilFactor(in.Soil)
	wx, haveWeather := weatherFactor(in.Weather)
	growth := stageFactor(days)
	variety := 1.0
	if in.Variety.DroughtResistant {
		variety = droughtResistantBonus
	}

	yield := base * soil * wx * growth * variety
	if yield < 0 {
		yield = 0
	}

	completeness := 0.0
	if haveSoil {
		completeness += 0.5
	}
	if haveWeather {
		completeness += 0.5
	}
	confidence := confidenceBase + confidenceSpread*completeness + jitter
	if confidence > confidenceBase+confidenceSpread+confidenceJitter {
		confidence = confidenceBase + confidenceSpread + confidenceJitter
	}

	features := []string{"planting_date", "days_since_planting", "variety"}
	if haveSoil {
		features = append(features, "soil_data")
	}
	if haveWeather {
		features = append(features, "weather_data")
	}

	return ScoreResult{
		PredictedYield: yield,
		Confidence:     confidence,
		GrowthStage:    StageForDay(days),
		FeaturesUsed:   features,
		Factors: map[string]float64{
			"base_yield":   base,
			"soil":         soil,
			"weather":      wx,
			"growth_stage": growth,
			"variety":      variety,
		},
	}
}

// soilFactor multiplies a pH-deviation term, an organic-matter term and an
// NPK term. A missing sample is neutral (factor 1), not a penalty.
func soilFactor(sample *entities.SoilSample) (float64, bool) {
	if sample == nil {
		return 1.0, false
	}

	ph := math.Max(phFloor, 1.0-0.1*math.Abs(sample.PH-optimalPH))

	// organic matter: ~5% puts the term at its ceiling
	om := clamp(omFloor+0.08*sample.OrganicMatter, omFloor, omCeil)

	// N/P/K scaled against healthy reference levels, averaged
	npk := clamp((sample.Nitrogen/40.0+sample.Phosphorus/30.0+sample.Potassium/40.0)/3.0, npkFloor, npkCeil)

	return ph * om * npk, true
}

// weatherFactor multiplies a rainfall-response term and a temperature
// response term over the recent window. An empty window is neutral.
func weatherFactor(window []entities.WeatherObservation) (float64, bool) {
	if len(window) == 0 {
		return 1.0, false
	}

	var rainSum, tempSum float64
	for _, obs := range window {
		rainSum += obs.RainfallMM
		tempSum += obs.TempAvg
	}
	n := float64(len(window))
	avgRain := rainSum / n
	avgTemp := tempSum / n

	return rainResponse(avgRain) * tempResponse(avgTemp), true
}

// rainResponse is 1.0 inside the 5-15 mm/day optimum and falls off linearly
// on either side, bounded below.
func rainResponse(avg float64) float64 {
	switch {
	case avg < rainOptLow:
		return math.Max(0.6, 0.6+0.08*avg)
	case avg > rainOptHigh:
		return math.Max(0.5, 1.0-0.02*(avg-rainOptHigh))
	default:
		return 1.0
	}
}

// tempResponse is 1.0 inside the 20-30 °C optimum and falls off linearly on
// either side, bounded below.
func tempResponse(avg float64) float64 {
	switch {
	case avg < tempOptLow:
		return math.Max(0.5, 1.0-0.05*(tempOptLow-avg))
	case avg > tempOptHigh:
		return math.Max(0.5, 1.0-0.05*(avg-tempOptHigh))
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
