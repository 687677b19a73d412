package models

import "time"

// Project status values.
const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusPaused    = "PAUSED"
	ProjectStatusCancelled = "CANCELLED"
)

// Project is the ownership unit of the catalog. Projects may nest via
// ParentID, but grants never flow between parent and child; every
// project is a flat unit for access resolution.
type Project struct {
	BaseModel

	Title    string `gorm:"size:200;not null" json:"title"`
	Subtitle string `gorm:"size:200" json:"subtitle,omitempty"`
	Label    string `gorm:"size:50;not null;index" json:"label"`

	ParentID *string  `gorm:"type:uuid" json:"parent_id,omitempty"`
	Parent   *Project `json:"parent,omitempty"`

	// OwningGroupID links at most one research group as the owning
	// group of this project. The link itself conveys nothing; the
	// group still needs explicit grants.
	OwningGroupID *string        `gorm:"type:uuid;uniqueIndex" json:"owning_group_id,omitempty"`
	OwningGroup   *ResearchGroup `gorm:"foreignKey:OwningGroupID" json:"owning_group,omitempty"`

	StartDate   *time.Time `json:"start_date,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Description string     `json:"description,omitempty"`

	Status string `gorm:"size:10;default:ACTIVE" json:"status"`
	Public bool   `gorm:"default:false" json:"public"`
}

// TableName overrides the default table name for GORM.
func (Project) TableName() string {
	return "projects"
}

// RecordKind implements access.Record.
func (Project) RecordKind() string {
	return KindProject
}
