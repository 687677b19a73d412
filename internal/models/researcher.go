package models

// Researcher is the institutional profile attached to a user account.
type Researcher struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	// Academic rank codes follow the institutional convention:
	// P professor, D doctor, M MSc, B BSc, S student, U unknown.
	AcademicRank string `gorm:"size:5" json:"academic_rank"`
	Position     string `gorm:"size:5" json:"position"`
	ORCID        string `gorm:"size:50" json:"orcid,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Researcher) TableName() string {
	return "researchers"
}
