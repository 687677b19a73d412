package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes an authenticated principal. Superusers bypass every
// access check; ordinary users see only what their grants and group
// memberships reach.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`

	// No column default: gorm omits zero-valued columns with defaults
	// on insert, which would silently reactivate a user created with
	// IsActive=false. Callers set the flag explicitly.
	IsActive bool `json:"is_active"`

	Groups []ResearchGroup `gorm:"many2many:user_research_groups;" json:"groups,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
