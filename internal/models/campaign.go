package models

import "time"

// Campaign groups field work carried out for a project over a period.
type Campaign struct {
	BaseModel

	Label string `gorm:"size:100;not null" json:"label"`

	ProjectID string   `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project `json:"project,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Campaign) TableName() string {
	return "campaigns"
}

// RecordKind implements access.Record.
func (Campaign) RecordKind() string {
	return KindCampaign
}
