package models

// Layer is a stratigraphic unit documented at a location. Ownership is
// reached through location -> project.
type Layer struct {
	BaseModel

	Identifier  string `gorm:"size:50;not null" json:"identifier"`
	Description string `json:"description,omitempty"`

	LocationID string    `gorm:"type:uuid;not null;index" json:"location_id"`
	Location   *Location `json:"location,omitempty"`

	DepthTop    *float64 `json:"depth_top,omitempty"`
	DepthBottom *float64 `json:"depth_bottom,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Layer) TableName() string {
	return "layers"
}

// RecordKind implements access.Record.
func (Layer) RecordKind() string {
	return KindLayer
}
