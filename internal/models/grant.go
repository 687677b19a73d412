package models

import "time"

// Grant is an explicit, additive permission held by a user or group
// over a specific record (a project or any other catalog record). The
// composite unique index makes grant writes naturally idempotent;
// granting the same tuple twice is a no-op. The access engine only ever
// appends grants, it never updates or deletes them.
type Grant struct {
	BaseModel

	SubjectType  string `gorm:"size:16;not null;uniqueIndex:idx_grant_tuple,priority:1;index:idx_grant_subject" json:"subject_type"`
	SubjectID    string `gorm:"type:uuid;not null;uniqueIndex:idx_grant_tuple,priority:2;index:idx_grant_subject" json:"subject_id"`
	ResourceKind string `gorm:"size:64;not null;uniqueIndex:idx_grant_tuple,priority:3;index" json:"resource_kind"`
	ResourceID   string `gorm:"type:uuid;not null;uniqueIndex:idx_grant_tuple,priority:4" json:"resource_id"`
	Permission   string `gorm:"size:16;not null;uniqueIndex:idx_grant_tuple,priority:5" json:"permission"`

	GrantedByID *string `gorm:"type:uuid" json:"granted_by_id,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Grant) TableName() string {
	return "grants"
}

// CreatorGrantTask is the outbox row for the creation grant hook. It is
// written inside the transaction that creates a record and processed in
// a separate transaction after commit, which makes the gap between
// "record exists" and "creator grant exists" explicit and observable.
type CreatorGrantTask struct {
	BaseModel

	PrincipalID  string `gorm:"type:uuid;not null;index" json:"principal_id"`
	ResourceKind string `gorm:"size:64;not null" json:"resource_kind"`
	ResourceID   string `gorm:"type:uuid;not null;index" json:"resource_id"`

	ProcessedAt *time.Time `gorm:"index" json:"processed_at,omitempty"`
}

// TableName overrides the default table name for GORM.
func (CreatorGrantTask) TableName() string {
	return "creator_grant_tasks"
}
