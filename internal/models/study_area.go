package models

// StudyArea is a geographic working area owned directly by a project.
type StudyArea struct {
	BaseModel

	Label       string `gorm:"size:100;not null" json:"label"`
	Description string `json:"description,omitempty"`

	ProjectID string   `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project `json:"project,omitempty"`
}

// TableName overrides the default table name for GORM.
func (StudyArea) TableName() string {
	return "study_areas"
}

// RecordKind implements access.Record.
func (StudyArea) RecordKind() string {
	return KindStudyArea
}
