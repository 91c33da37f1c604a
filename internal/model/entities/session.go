package entities

import (
	"math"
	"time"
)

// PlantingSession is one variety planted on one farm on one date. Predictions
// and recommendations hang off the session.
type PlantingSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FarmID          uint       `gorm:"not null;index" json:"farm_id"`
	VarietyID       uint       `gorm:"not null" json:"variety_id"`
	PlantingDate    time.Time  `gorm:"not null" json:"planting_date"`
	ExpectedHarvest *time.Time `json:"expected_harvest,omitempty"`

	Farm    Farm         `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
	Variety MaizeVariety `gorm:"foreignKey:VarietyID" json:"variety,omitempty"`
}

func (PlantingSession) TableName() string { return "planting_sessions" }

// DaysSincePlanting is the whole number of days between planting and asOf.
// Negative when the planting date is still in the future, including sub-day
// gaps: a crop planted later today has not been planted yet.
func (s PlantingSession) DaysSincePlanting(asOf time.Time) int {
	return int(math.Floor(asOf.Sub(s.PlantingDate).Hours() / 24))
}
