package entities

// GrowthStage is a named agronomic phase derived from days since planting.
type GrowthStage string

const (
	StagePrePlanting GrowthStage = "Pre-Planting"
	StageGermination GrowthStage = "Germination & Emergence"
	StageVegetative  GrowthStage = "Vegetative Growth (V1-V5)"
	StageRapidGrowth GrowthStage = "Rapid Growth (V6-V12)"
	StageTasseling   GrowthStage = "Tasseling & Silking"
	StageGrainFill   GrowthStage = "Grain Fill"
	StageMaturity    GrowthStage = "Maturity / Harvest Ready"
)
