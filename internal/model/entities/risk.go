package entities

// RiskFactor is a derived tag summarizing an adverse condition detected from
// recent weather or the latest soil sample. Risk factors are transient
// analysis output and are never persisted.
type RiskFactor string

const (
	RiskDroughtStress        RiskFactor = "DROUGHT_STRESS"
	RiskHeatStress           RiskFactor = "HEAT_STRESS"
	RiskExcessiveRainfall    RiskFactor = "EXCESSIVE_RAINFALL"
	RiskPHImbalance          RiskFactor = "PH_IMBALANCE"
	RiskNitrogenDeficiency   RiskFactor = "NITROGEN_DEFICIENCY"
	RiskPhosphorusDeficiency RiskFactor = "PHOSPHORUS_DEFICIENCY"
	RiskSoilMoistureLow      RiskFactor = "SOIL_MOISTURE_LOW"
	RiskLateSeasonStress     RiskFactor = "LATE_SEASON_STRESS"
)
