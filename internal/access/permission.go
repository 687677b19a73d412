// Package access implements the project-scoped access-control engine of
// the catalog: resolving which projects a principal can reach, deciding
// single-record permissions across the fixed set of ownership shapes,
// deriving equivalent bulk-listing predicates, and granting creators
// full rights on their records after the creating transaction commits.
package access

import "github.com/cgdb-project/cgdb/internal/models"

// Permission enumerates the permission kinds a grant can carry.
type Permission string

// Permission kinds. Grants are additive only; there is no deny kind.
const (
	PermissionView   Permission = "view"
	PermissionChange Permission = "change"
	PermissionDelete Permission = "delete"
	PermissionAdd    Permission = "add"
)

// AllPermissions is the full permission set assigned to a record's
// creator.
var AllPermissions = []Permission{PermissionView, PermissionChange, PermissionDelete, PermissionAdd}

// Valid reports whether p is a known permission kind.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionChange, PermissionDelete, PermissionAdd:
		return true
	}
	return false
}

// Record is any catalog entity the engine can authorise.
type Record interface {
	RecordKind() string
	RecordID() string
}

// CreatedRecord is implemented by record kinds that track their
// creating principal. Only these participate in the creation grant
// hook.
type CreatedRecord interface {
	Record
	CreatedBy() *string
}

// Subject identifies the holder of a grant, either a user or a research
// group.
type Subject struct {
	Type string
	ID   string
}

// Subject types as stored on grant rows.
const (
	SubjectTypeUser  = "user"
	SubjectTypeGroup = "group"
)

// UserSubject builds the subject for a direct user grant.
func UserSubject(userID string) Subject {
	return Subject{Type: SubjectTypeUser, ID: userID}
}

// GroupSubject builds the subject for a group grant.
func GroupSubject(groupID string) Subject {
	return Subject{Type: SubjectTypeGroup, ID: groupID}
}

// SubjectsFor expands a loaded user into the subjects its effective
// permissions are the union of: the user itself plus every group it
// belongs to. Groups must be preloaded.
func SubjectsFor(user *models.User) []Subject {
	if user == nil {
		return nil
	}

	subjects := make([]Subject, 0, len(user.Groups)+1)
	subjects = append(subjects, UserSubject(user.ID))
	for _, group := range user.Groups {
		subjects = append(subjects, GroupSubject(group.ID))
	}
	return subjects
}
