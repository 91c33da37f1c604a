package prediction

import "github.com/agrolytics/maize-advisor/internal/model/entities"

// Risk thresholds. Weather checks run per day over the recent window; soil
// checks run on the latest sample.
const (
	riskWindowDays = 7

	droughtRainMM    = 5.0
	heatTempMaxC     = 35.0
	excessRainMM     = 50.0
	phLow            = 5.5
	phHigh           = 7.5
	nitrogenMin      = 20.0
	phosphorusMin    = 15.0
	soilMoistureMin  = 30.0
	lateSeasonCutoff = 0.8 // fraction of maturity days
)

// AnalyzeRisks maps the recent weather window and the latest soil sample onto
// risk tags. The result is a set in fixed table order, no duplicates. An
// entirely empty window means no weather data was ever acquired, so weather
// checks are skipped rather than flagging phantom drought; a partial window
// counts its missing days as dry ones.
func AnalyzeRisks(window []entities.WeatherObservation, soil *entities.SoilSample, daysSincePlanting, maturityDays int) []entities.RiskFactor {
	var out []entities.RiskFactor
	add := func(r entities.RiskFactor) { out = append(out, r) }

	if len(window) > 0 {
		drought := len(window) < riskWindowDays
		heat := false
		excess := false
		for _, obs := range window {
			if obs.RainfallMM < droughtRainMM {
				drought = true
			}
			if obs.RainfallMM > excessRainMM {
				excess = true
			}
			if obs.TempMax > heatTempMaxC {
				heat = true
			}
		}
		if drought {
			add(entities.RiskDroughtStress)
		}
		if heat {
			add(entities.RiskHeatStress)
		}
		if excess {
			add(entities.RiskExcessiveRainfall)
		}
	}

	if soil != nil {
		if soil.PH < phLow || soil.PH > phHigh {
			add(entities.RiskPHImbalance)
		}
		if soil.Nitrogen < nitrogenMin {
			add(entities.RiskNitrogenDeficiency)
		}
		if soil.Phosphorus < phosphorusMin {
			add(entities.RiskPhosphorusDeficiency)
		}
		if soil.MoisturePct < soilMoistureMin {
			add(entities.RiskSoilMoistureLow)
		}
	}

	if maturityDays > 0 && float64(daysSincePlanting) > lateSeasonCutoff*float64(maturityDays) {
		add(entities.RiskLateSeasonStress)
	}

	return out
}
