package prediction

import "github.com/agrolytics/maize-advisor/internal/model/entities"

// Maize growth calendar, in whole days since planting. The bands follow the
// usual 120-day field-corn development timeline.
const (
	germinationEnd = 14  // emergence through V1
	vegetativeEnd  = 35  // V1-V5
	rapidGrowthEnd = 65  // V6-V12
	tasselingEnd   = 95  // VT through R2
	grainFillEnd   = 120 // R3 through R5
)

// StageForDay maps days since planting onto a named growth stage.
func StageForDay(days int) entities.GrowthStage {
	switch {
	case days < 0:
		return entities.StagePrePlanting
	case days <= germinationEnd:
		return entities.StageGermination
	case days <= vegetativeEnd:
		return entities.StageVegetative
	case days <= rapidGrowthEnd:
		return entities.StageRapidGrowth
	case days <= tasselingEnd:
		return entities.StageTasseling
	case days <= grainFillEnd:
		return entities.StageGrainFill
	default:
		return entities.StageMaturity
	}
}

// stageFactor is the yield-potential step function: zero before planting,
// ramping 0.3 -> 1.0 across the four pre-reproductive bands, easing to 0.9
// once the crop is past its maturity window.
func stageFactor(days int) float64 {
	switch {
	case days < 0:
		return 0
	case days <= germinationEnd:
		return 0.3
	case days <= vegetativeEnd:
		return 0.5
	case days <= rapidGrowthEnd:
		return 0.8
	case days <= grainFillEnd:
		return 1.0
	default:
		return 0.9
	}
}
