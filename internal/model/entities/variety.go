package entities

// MaizeVariety holds the agronomic traits of one cultivar.
type MaizeVariety struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name              string  `gorm:"not null;size:255" json:"name"`
	MaturityDays      int     `gorm:"not null" json:"maturity_days"`
	OptimalTempMin    float64 `json:"optimal_temp_min"`
	OptimalTempMax    float64 `json:"optimal_temp_max"`
	DroughtResistant  bool    `json:"drought_resistant"`
	DiseaseResistance string  `gorm:"type:text" json:"disease_resistance"`
	AvgYield          float64 `gorm:"type:decimal(6,2)" json:"avg_yield"` // t/ha
}

func (MaizeVariety) TableName() string { return "maize_varieties" }
