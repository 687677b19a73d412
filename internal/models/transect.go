package models

// Transect is an ordered line of observation points within a study
// area, owned through study_area -> project like Site.
type Transect struct {
	BaseModel

	Label       string `gorm:"size:100;not null" json:"label"`
	Description string `json:"description,omitempty"`

	StudyAreaID string     `gorm:"type:uuid;not null;index" json:"study_area_id"`
	StudyArea   *StudyArea `json:"study_area,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Transect) TableName() string {
	return "transects"
}

// RecordKind implements access.Record.
func (Transect) RecordKind() string {
	return KindTransect
}
