package access

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cgdb-project/cgdb/internal/models"
)

// Store reads and writes grant rows. It is append-only: the engine
// never updates or deletes a grant, so effective permissions can only
// grow until an administrator intervenes outside the engine.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a grant store backed by the provided database.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("grant store: db is required")
	}
	return &Store{db: db}, nil
}

// Grant records a permission for a subject on a specific record. The
// composite unique index makes the write idempotent: granting an
// already-held permission is a no-op, and previously held permissions
// are never affected.
func (s *Store) Grant(ctx context.Context, subject Subject, resourceKind, resourceID string, perm Permission, grantedBy *string) error {
	if subject.Type == "" || subject.ID == "" {
		return errors.New("grant store: subject is required")
	}
	if resourceKind == "" || resourceID == "" {
		return errors.New("grant store: resource is required")
	}
	if !perm.Valid() {
		return fmt.Errorf("grant store: invalid permission %q", perm)
	}

	grant := models.Grant{
		SubjectType:  subject.Type,
		SubjectID:    subject.ID,
		ResourceKind: resourceKind,
		ResourceID:   resourceID,
		Permission:   string(perm),
		GrantedByID:  grantedBy,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error; err != nil {
		return fmt.Errorf("grant store: write grant: %w", err)
	}
	return nil
}

// HasGrant reports whether any of the subjects holds the permission on
// the exact record.
func (s *Store) HasGrant(ctx context.Context, subjects []Subject, resourceKind, resourceID string, perm Permission) (bool, error) {
	if len(subjects) == 0 {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Grant{}).
		Where("resource_kind = ? AND resource_id = ? AND permission = ?", resourceKind, resourceID, string(perm)).
		Where(s.subjectCondition(subjects)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("grant store: has grant: %w", err)
	}
	return count > 0, nil
}

// ProjectsWithGrant returns the distinct project ids any of the
// subjects holds the permission on. One bounded query regardless of how
// many groups the principal belongs to.
func (s *Store) ProjectsWithGrant(ctx context.Context, subjects []Subject, perm Permission) ([]string, error) {
	return s.resourceIDs(ctx, subjects, models.KindProject, perm)
}

// ResourceIDsWithGrant returns the distinct record ids of the given
// kind any of the subjects holds the permission on. Used for the
// per-record listing predicate of kinds without project ownership.
func (s *Store) ResourceIDsWithGrant(ctx context.Context, subjects []Subject, resourceKind string, perm Permission) ([]string, error) {
	return s.resourceIDs(ctx, subjects, resourceKind, perm)
}

func (s *Store) resourceIDs(ctx context.Context, subjects []Subject, resourceKind string, perm Permission) ([]string, error) {
	if len(subjects) == 0 {
		return nil, nil
	}

	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Grant{}).
		Distinct("resource_id").
		Where("resource_kind = ? AND permission = ?", resourceKind, string(perm)).
		Where(s.subjectCondition(subjects)).
		Order("resource_id").
		Pluck("resource_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("grant store: resource ids: %w", err)
	}
	return ids, nil
}

func (s *Store) subjectCondition(subjects []Subject) *gorm.DB {
	var userIDs, groupIDs []string
	for _, subject := range subjects {
		switch subject.Type {
		case SubjectTypeUser:
			userIDs = append(userIDs, subject.ID)
		case SubjectTypeGroup:
			groupIDs = append(groupIDs, subject.ID)
		}
	}

	session := s.db.Session(&gorm.Session{NewDB: true})

	var cond *gorm.DB
	if len(userIDs) > 0 {
		cond = session.Where("subject_type = ? AND subject_id IN ?", SubjectTypeUser, userIDs)
	}
	if len(groupIDs) > 0 {
		groupCond := "subject_type = ? AND subject_id IN ?"
		if cond == nil {
			cond = session.Where(groupCond, SubjectTypeGroup, groupIDs)
		} else {
			cond = cond.Or(groupCond, SubjectTypeGroup, groupIDs)
		}
	}
	if cond == nil {
		cond = session.Where("1 = 0")
	}
	return cond
}
