package registry

import "time"

// Billboard is one licensed billboard in the municipal registry. Rows are
// created by the bulk seed and read-only afterwards.
type Billboard struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	LicenseID string    `gorm:"uniqueIndex" json:"license_id"`
	Owner     string    `json:"owner"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	WidthM    float64   `json:"width_m"`
	HeightM   float64   `json:"height_m"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
}

func (Billboard) TableName() string {
	return "sentinel.registry_billboards"
}

// Record is one parsed row of the seed input, before an ID is assigned.
type Record struct {
	LicenseID string
	Owner     string
	Lat       float64
	Lon       float64
	WidthM    float64
	HeightM   float64
	ValidFrom time.Time
	ValidTo   time.Time
}
