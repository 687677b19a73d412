package models

// Data source values for records that distinguish tenant data from
// published literature data.
const (
	DataSourceInternal   = "internal"
	DataSourceLiterature = "literature"
)

// Location is a sampled position in the field. Internal locations are
// owned by a project; literature locations come from a publication and
// are exempt from project ownership (globally viewable and editable,
// deletable only by superusers).
type Location struct {
	BaseModel

	Identifier string `gorm:"size:50;uniqueIndex;not null" json:"identifier"`

	DataSource string `gorm:"size:10;not null;default:internal;index" json:"data_source"`

	ProjectID *string  `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Project   *Project `json:"project,omitempty"`

	CampaignID *string   `gorm:"type:uuid" json:"campaign_id,omitempty"`
	Campaign   *Campaign `json:"campaign,omitempty"`

	// ReferenceID points at the publication a literature location was
	// digitised from.
	ReferenceID *string    `gorm:"type:uuid" json:"reference_id,omitempty"`
	Reference   *Reference `json:"reference,omitempty"`

	Easting  *float64 `json:"easting,omitempty"`
	Northing *float64 `json:"northing,omitempty"`

	// Liner records whether the core was drilled with a closed liner.
	Liner    bool `gorm:"default:false" json:"liner"`
	Sampling bool `gorm:"default:false" json:"sampling"`
}

// TableName overrides the default table name for GORM.
func (Location) TableName() string {
	return "locations"
}

// RecordKind implements access.Record.
func (Location) RecordKind() string {
	return KindLocation
}

// IsLiterature reports whether the location is literature sourced.
func (l *Location) IsLiterature() bool {
	return l.DataSource == DataSourceLiterature
}
