package entities

import "time"

// Farm is a tract of land owned by one user. Weather acquisition and soil
// sampling are keyed by farm identity.
type Farm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID   string  `gorm:"size:64;index" json:"owner_id"`
	Name      string  `gorm:"not null;size:255" json:"name"`
	Location  string  `gorm:"size:255" json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AreaHa    float64 `gorm:"type:decimal(10,2)" json:"area_ha"`
}

func (Farm) TableName() string { return "farms" }
