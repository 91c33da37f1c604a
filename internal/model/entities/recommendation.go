package entities

import "time"

type RecommendationCategory string

const (
	CategoryIrrigation        RecommendationCategory = "IRRIGATION"
	CategoryFertilization     RecommendationCategory = "FERTILIZATION"
	CategorySoilManagement    RecommendationCategory = "SOIL_MANAGEMENT"
	CategoryDrainage          RecommendationCategory = "DRAINAGE"
	CategoryCropProtection    RecommendationCategory = "CROP_PROTECTION"
	CategoryEmergency         RecommendationCategory = "EMERGENCY"
	CategoryYieldOptimization RecommendationCategory = "YIELD_OPTIMIZATION"
	CategoryDataQuality       RecommendationCategory = "DATA_QUALITY"
	CategoryMonitoring        RecommendationCategory = "MONITORING"
	CategoryMaintenance       RecommendationCategory = "MAINTENANCE"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank orders priorities for sorting, CRITICAL first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Recommendation is one actionable item produced by the engine. Viewed and
// Implemented are flipped by the CRUD layer, never by the engine.
type Recommendation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SessionID   uint                   `gorm:"not null;index" json:"session_id"`
	Category    RecommendationCategory `gorm:"size:32;not null" json:"category"`
	Title       string                 `gorm:"size:255;not null" json:"title"`
	Description string                 `gorm:"type:text" json:"description"`
	Priority    Priority               `gorm:"size:16;not null" json:"priority"`
	Viewed      bool                   `json:"viewed"`
	Implemented bool                   `json:"implemented"`
	Confidence  *float64               `json:"confidence,omitempty"`
}

func (Recommendation) TableName() string { return "recommendations" }
