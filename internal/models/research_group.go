package models

// ResearchGroup is a named collection of users that can hold grants of
// its own, typically project-level view or change permissions shared by
// a whole working group.
type ResearchGroup struct {
	BaseModel

	Label       string `gorm:"size:100;not null" json:"label"`
	Description string `json:"description"`

	HeadOfGroupID *string     `gorm:"type:uuid" json:"head_of_group_id"`
	HeadOfGroup   *Researcher `gorm:"foreignKey:HeadOfGroupID" json:"head_of_group,omitempty"`

	Users []User `gorm:"many2many:user_research_groups;" json:"users,omitempty"`
}

// TableName overrides the default table name for GORM.
func (ResearchGroup) TableName() string {
	return "research_groups"
}
