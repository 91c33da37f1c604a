package entities

import "time"

// SoilSample is one lab analysis of a farm's soil. Scoring always consults
// the latest sample by date.
type SoilSample struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FarmID        uint      `gorm:"not null;index:idx_soil_farm_date,priority:1" json:"farm_id"`
	SampleDate    time.Time `gorm:"not null;index:idx_soil_farm_date,priority:2" json:"sample_date"`
	SoilType      string    `gorm:"size:64" json:"soil_type"`
	PH            float64   `json:"ph"`
	OrganicMatter float64   `json:"organic_matter_pct"`
	Nitrogen      float64   `json:"nitrogen"`
	Phosphorus    float64   `json:"phosphorus"`
	Potassium     float64   `json:"potassium"`
	MoisturePct   float64   `json:"moisture_pct"`
}

func (SoilSample) TableName() string { return "soil_samples" }
