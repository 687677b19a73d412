package models

import "time"

// SampleType labels the kind of material a sample is.
type SampleType struct {
	BaseModel

	Word  string `gorm:"size:35;uniqueIndex;not null" json:"word"`
	Label string `gorm:"size:5;not null" json:"label"`
}

// TableName overrides the default table name for GORM.
func (SampleType) TableName() string {
	return "sample_types"
}

// Sample is physical material taken in the field. A sample needs either
// a project or a location (or both); when both are present they must
// agree. Ownership resolution therefore uses the direct project when
// set and otherwise follows location -> project.
type Sample struct {
	BaseModel

	Identifier string `gorm:"size:40;uniqueIndex;not null" json:"identifier"`
	IGSN       string `gorm:"size:100" json:"igsn,omitempty"`

	ProjectID *string  `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Project   *Project `json:"project,omitempty"`

	LocationID *string   `gorm:"type:uuid;index" json:"location_id,omitempty"`
	Location   *Location `json:"location,omitempty"`

	LayerID *string `gorm:"type:uuid" json:"layer_id,omitempty"`
	Layer   *Layer  `json:"layer,omitempty"`

	TypeID *string     `gorm:"type:uuid" json:"type_id,omitempty"`
	Type   *SampleType `gorm:"foreignKey:TypeID" json:"type,omitempty"`

	Date     *time.Time `json:"date,omitempty"`
	Material string     `gorm:"size:40" json:"material,omitempty"`

	DepthTop    *float64 `json:"depth_top,omitempty"`
	DepthBottom *float64 `json:"depth_bottom,omitempty"`

	Weight *float64 `json:"weight,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Sample) TableName() string {
	return "samples"
}

// RecordKind implements access.Record.
func (Sample) RecordKind() string {
	return KindSample
}

// DepthMid returns the midpoint depth when both bounds are known.
func (s *Sample) DepthMid() *float64 {
	if s.DepthTop == nil || s.DepthBottom == nil {
		return nil
	}
	mid := (*s.DepthTop + *s.DepthBottom) / 2
	return &mid
}
