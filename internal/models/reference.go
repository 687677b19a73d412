package models

// Reference is a bibliographic entry. References carry no project
// ownership at all; visibility is controlled purely by per-record
// grants (plus the creator grant).
type Reference struct {
	BaseModel

	Title   string `gorm:"size:300;not null" json:"title"`
	Authors string `gorm:"size:300" json:"authors,omitempty"`
	Year    *int   `json:"year,omitempty"`
	Journal string `gorm:"size:200" json:"journal,omitempty"`
	DOI     string `gorm:"size:100;index" json:"doi,omitempty"`
}

// TableName overrides the default table name for GORM. REFERENCES is a
// reserved word in every supported SQL dialect.
func (Reference) TableName() string {
	return "bibliography_references"
}

// RecordKind implements access.Record.
func (Reference) RecordKind() string {
	return KindReference
}
