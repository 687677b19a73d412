package models

// Site is a named point of interest inside a study area. It has no
// project reference of its own; ownership is reached through the study
// area.
type Site struct {
	BaseModel

	Label string `gorm:"size:100;not null" json:"label"`

	StudyAreaID string     `gorm:"type:uuid;not null;index" json:"study_area_id"`
	StudyArea   *StudyArea `json:"study_area,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Site) TableName() string {
	return "sites"
}

// RecordKind implements access.Record.
func (Site) RecordKind() string {
	return KindSite
}
