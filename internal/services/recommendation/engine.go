package recommendation

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/services/prediction"
)

// AdvancedProvider is the optional external collaborator consulted for
// high-criticality sessions. Failures are swallowed by the engine.
type AdvancedProvider interface {
	Generate(ctx context.Context, session entities.PlantingSession, recentWeather []entities.WeatherObservation, latestSoil *entities.SoilSample) ([]entities.Recommendation, error)
}

// escalationLevel is the criticality at which the advanced collaborator is
// consulted.
const escalationLevel = 3

// GenerateInput bundles everything one engine invocation consumes.
type GenerateInput struct {
	Session    entities.PlantingSession
	Prediction entities.YieldPrediction
	Assessment prediction.Assessment
	Risks      []entities.RiskFactor
	Window     []entities.WeatherObservation
	Soil       *entities.SoilSample
}

// Engine turns an assessed prediction into an ordered, deduplicated batch of
// recommendations.
type Engine struct {
	th  prediction.Thresholds
	adv AdvancedProvider // nil when escalation is disabled
}

func NewEngine(th prediction.Thresholds, adv AdvancedProvider) *Engine {
	return &Engine{th: th, adv: adv}
}

// Generate runs one pass: intervention or maintenance path, then escalation
// for criticality >= 3, then title deduplication. Emission order within a
// call is deterministic.
func (e *Engine) Generate(ctx context.Context, in GenerateInput) []entities.Recommendation {
	var out []entities.Recommendation

	if in.Assessment.NeedsIntervention {
		out = e.interventionPath(in)
	} else {
		out = e.maintenancePath(in)
	}

	if in.Assessment.CriticalityLevel >= escalationLevel && e.adv != nil {
		extra, err := e.adv.Generate(ctx, in.Session, in.Window, in.Soil)
		if err != nil {
			log.Printf("recommendation: advanced escalation for session %d failed, keeping local items: %v", in.Session.ID, err)
		} else {
			out = append(out, extra...)
		}
	}

	return dedupeByTitle(out)
}

func (e *Engine) interventionPath(in GenerateInput) []entities.Recommendation {
	var out []entities.Recommendation

	if in.Prediction.PredictedYield < e.th.CriticalYield {
		out = append(out, e.item(in, entities.CategoryEmergency, entities.PriorityCritical,
			"Critical yield alert: immediate action required",
			fmt.Sprintf("Predicted yield %.1f t/ha is below the %.1f t/ha critical threshold. Inspect the field for pest damage, water stress and nutrient failure, and consider replanting options if the stand is not recoverable.",
				in.Prediction.PredictedYield, e.th.CriticalYield)))
	}

	if in.Assessment.DeficitPct > e.th.DeficitPct {
		pri := entities.PriorityMedium
		if in.Assessment.DeficitPct > 2*e.th.DeficitPct {
			pri = entities.PriorityHigh
		}
		out = append(out, e.item(in, entities.CategoryYieldOptimization, pri,
			"Close the yield gap",
			fmt.Sprintf("Predicted yield trails the expected %.1f t/ha by %.0f%%. Review irrigation scheduling, top-dress fertilization and weed pressure to recover the shortfall.",
				in.Assessment.ExpectedYield, in.Assessment.DeficitPct)))
	}

	for _, risk := range in.Risks {
		if tpl, ok := riskTemplates[risk]; ok {
			out = append(out, e.item(in, tpl.category, tpl.priority, tpl.title, tpl.description))
		}
	}

	if in.Prediction.Confidence < e.th.LowConfidencePct {
		out = append(out, e.item(in, entities.CategoryDataQuality, entities.PriorityMedium,
			"Improve field data coverage",
			"Prediction confidence is low because soil or weather data is missing. Submit a recent soil analysis and verify weather acquisition for this farm to sharpen future predictions."))
	}

	return out
}

func (e *Engine) maintenancePath(in GenerateInput) []entities.Recommendation {
	return []entities.Recommendation{
		e.item(in, entities.CategoryMaintenance, entities.PriorityLow,
			"Continue current practices",
			"The crop is tracking its expected yield. Keep the current irrigation and fertilization schedule."),
		e.item(in, entities.CategoryMonitoring, entities.PriorityLow,
			"Maintain regular monitoring",
			"Walk the field weekly and watch for early signs of pest, disease or water stress so deviations are caught before they cost yield."),
	}
}

func (e *Engine) item(in GenerateInput, cat entities.RecommendationCategory, pri entities.Priority, title, desc string) entities.Recommendation {
	return entities.Recommendation{
		ID:          uuid.New().String(),
		SessionID:   in.Session.ID,
		Category:    cat,
		Title:       title,
		Description: desc,
		Priority:    pri,
	}
}

// dedupeByTitle keeps the first occurrence of each title, preserving order.
func dedupeByTitle(items []entities.Recommendation) []entities.Recommendation {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, rec := range items {
		if _, dup := seen[rec.Title]; dup {
			continue
		}
		seen[rec.Title] = struct{}{}
		out = append(out, rec)
	}
	return out
}

type riskTemplate struct {
	category    entities.RecommendationCategory
	priority    entities.Priority
	title       string
	description string
}

// riskTemplates maps each risk tag onto one fixed recommendation.
var riskTemplates = map[entities.RiskFactor]riskTemplate{
	entities.RiskDroughtStress: {
		category:    entities.CategoryIrrigation,
		priority:    entities.PriorityHigh,
		title:       "Increase irrigation frequency",
		description: "Rainfall over the past week has been below crop demand. Increase irrigation frequency and check soil moisture at root depth daily until rainfall recovers.",
	},
	entities.RiskHeatStress: {
		category:    entities.CategoryIrrigation,
		priority:    entities.PriorityHigh,
		title:       "Mitigate heat stress",
		description: "Daily maximum temperatures exceeded 35°C. Irrigate in the early morning or evening to cool the canopy and avoid midday water loss.",
	},
	entities.RiskExcessiveRainfall: {
		category:    entities.CategoryDrainage,
		priority:    entities.PriorityHigh,
		title:       "Check field drainage",
		description: "Heavy rainfall above 50mm in a day was recorded. Inspect drainage channels and low-lying areas for standing water to prevent root asphyxiation.",
	},
	entities.RiskPHImbalance: {
		category:    entities.CategorySoilManagement,
		priority:    entities.PriorityMedium,
		title:       "Correct soil pH",
		description: "Soil pH is outside the 5.5-7.5 band maize tolerates. Apply lime on acidic soil or elemental sulfur on alkaline soil per the latest analysis.",
	},
	entities.RiskNitrogenDeficiency: {
		category:    entities.CategoryFertilization,
		priority:    entities.PriorityHigh,
		title:       "Apply nitrogen fertilizer",
		description: "Soil nitrogen is below the level maize needs for grain fill. Side-dress with a nitrogen fertilizer suited to the current growth stage.",
	},
	entities.RiskPhosphorusDeficiency: {
		category:    entities.CategoryFertilization,
		priority:    entities.PriorityMedium,
		title:       "Apply phosphorus fertilizer",
		description: "Soil phosphorus is below the recommended level. Apply a phosphate fertilizer, banded near the root zone for best uptake.",
	},
	entities.RiskSoilMoistureLow: {
		category:    entities.CategoryIrrigation,
		priority:    entities.PriorityMedium,
		title:       "Raise soil moisture",
		description: "Measured soil moisture is below 30%. Schedule supplemental irrigation to bring the root zone back to field capacity.",
	},
	entities.RiskLateSeasonStress: {
		category:    entities.CategoryMonitoring,
		priority:    entities.PriorityMedium,
		title:       "Plan harvest window",
		description: "The crop is past 80% of its maturity window. Monitor grain moisture and plan the harvest to avoid late-season weather losses.",
	},
}
