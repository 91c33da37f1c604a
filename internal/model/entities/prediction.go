package entities

import "time"

// YieldPrediction is one run of the scoring model for a session. Rows are
// immutable once stored; successive runs form a history ordered by date.
type YieldPrediction struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SessionID      uint               `gorm:"not null;index:idx_pred_session_date,priority:1" json:"session_id"`
	PredictionDate time.Time          `gorm:"not null;index:idx_pred_session_date,priority:2" json:"prediction_date"`
	PredictedYield float64            `gorm:"not null" json:"predicted_yield"` // t/ha, >= 0
	Confidence     float64            `gorm:"not null" json:"confidence"`      // percent, [70,95]
	ModelVersion   string             `gorm:"size:32" json:"model_version"`
	FeaturesUsed   []string           `gorm:"serializer:json" json:"features_used"`
	Factors        map[string]float64 `gorm:"serializer:json" json:"factors"`
}

func (YieldPrediction) TableName() string { return "yield_predictions" }
