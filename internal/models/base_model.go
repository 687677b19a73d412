package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared fields for all persistent catalog models.
// CreatedByID is what makes a record eligible for the creator grant
// hook; models without it are never enqueued.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// RecordID returns the primary key used for per-record grants.
func (m BaseModel) RecordID() string {
	return m.ID
}

// CreatedBy returns the creating principal when one was recorded.
func (m BaseModel) CreatedBy() *string {
	return m.CreatedByID
}
