package model

import (
	"github.com/agrolytics/maize-advisor/internal/model/entities"
	"github.com/agrolytics/maize-advisor/internal/model/messages"
)

// Aliases so services can import one package for the common types.

type (
	Farm                     = entities.Farm
	SoilSample               = entities.SoilSample
	MaizeVariety             = entities.MaizeVariety
	PlantingSession          = entities.PlantingSession
	WeatherObservation       = entities.WeatherObservation
	WeatherAlert             = entities.WeatherAlert
	YieldPrediction          = entities.YieldPrediction
	Recommendation           = entities.Recommendation
	RiskFactor               = entities.RiskFactor
	GrowthStage              = entities.GrowthStage
	PredictionCompletedEvent = messages.PredictionCompletedEvent
)
