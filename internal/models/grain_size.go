package models

import "gorm.io/datatypes"

// GrainSizeMeasurement stores a grain-size distribution summary for a
// sample. Ownership is reached through sample -> project; the sample's
// project reference is maintained on save, so a single hop suffices.
type GrainSizeMeasurement struct {
	BaseModel

	SampleID string  `gorm:"type:uuid;not null;index" json:"sample_id"`
	Sample   *Sample `json:"sample,omitempty"`

	Method string `gorm:"size:50" json:"method,omitempty"`

	// Distribution holds the full measured curve as exported by the
	// instrument, keyed by sieve size in millimetres.
	Distribution datatypes.JSON `json:"distribution,omitempty"`

	D10 *float64 `json:"d10,omitempty"`
	D50 *float64 `json:"d50,omitempty"`
	D90 *float64 `json:"d90,omitempty"`

	ClayPercent *float64 `json:"clay_percent,omitempty"`
	SiltPercent *float64 `json:"silt_percent,omitempty"`
	SandPercent *float64 `json:"sand_percent,omitempty"`
}

// TableName overrides the default table name for GORM.
func (GrainSizeMeasurement) TableName() string {
	return "grain_size_measurements"
}

// RecordKind implements access.Record.
func (GrainSizeMeasurement) RecordKind() string {
	return KindGrainSize
}
