package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/access"
	"github.com/cgdb-project/cgdb/internal/models"
	apperrors "github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/logger"
)

// GrantService administers project permissions. Grants are additive
// only; there is no revoke operation, matching the engine's append-only
// store.
type GrantService struct {
	db     *gorm.DB
	engine *access.Engine
	log    *zap.Logger
}

// NewGrantService constructs a GrantService.
func NewGrantService(db *gorm.DB, engine *access.Engine) (*GrantService, error) {
	if db == nil {
		return nil, errors.New("grant service: db is required")
	}
	if engine == nil {
		return nil, errors.New("grant service: engine is required")
	}
	return &GrantService{
		db:     db,
		engine: engine,
		log:    logger.WithModule("services.grant"),
	}, nil
}

// GrantProjectInput names the subject and the permissions to add.
type GrantProjectInput struct {
	SubjectType string   `json:"subject_type" validate:"required,oneof=user group"`
	SubjectID   string   `json:"subject_id" validate:"required,uuid"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,oneof=view change delete add"`
}

// GrantProject adds project permissions for a user or group. Superusers
// and holders of add on the project may grant.
func (s *GrantService) GrantProject(ctx context.Context, callerID, projectID string, input GrantProjectInput) error {
	ctx = ensureContext(ctx)

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.authorizeGrantor(ctx, callerID, project); err != nil {
		return err
	}

	subject, err := s.resolveSubject(ctx, input.SubjectType, input.SubjectID)
	if err != nil {
		return err
	}

	store := s.engine.Store()
	for _, raw := range input.Permissions {
		perm := access.Permission(raw)
		if !perm.Valid() {
			return apperrors.NewBadRequest("unknown permission " + raw)
		}
		if err := store.Grant(ctx, subject, models.KindProject, project.ID, perm, &callerID); err != nil {
			return apperrors.Wrap(err, "write grant")
		}
	}

	s.log.Info("project permissions granted",
		zap.String("project_id", project.ID),
		zap.String("subject_type", subject.Type),
		zap.String("subject_id", subject.ID),
		zap.Strings("permissions", input.Permissions),
		zap.String("granted_by", callerID),
	)
	return nil
}

// ListProjectGrants returns the grant rows held on a project.
func (s *GrantService) ListProjectGrants(ctx context.Context, callerID, projectID string) ([]models.Grant, error) {
	ctx = ensureContext(ctx)

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGrantor(ctx, callerID, project); err != nil {
		return nil, err
	}

	var grants []models.Grant
	err = s.db.WithContext(ctx).
		Where("resource_kind = ? AND resource_id = ?", models.KindProject, project.ID).
		Order("subject_type, subject_id, permission").
		Find(&grants).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list grants")
	}
	return grants, nil
}

// GrantRecord adds per-record permissions on a record without project
// ownership (currently bibliography references). Superuser only.
func (s *GrantService) GrantRecord(ctx context.Context, callerID, kind, recordID string, input GrantProjectInput) error {
	ctx = ensureContext(ctx)

	def, ok := access.Lookup(kind)
	if !ok {
		return apperrors.NewBadRequest("unknown record kind " + kind)
	}
	if def.Descriptor.Shape() != access.ShapeNone {
		return apperrors.NewBadRequest("record kind is project owned; grant on the project instead")
	}

	super, err := isSuperuser(ctx, s.db, callerID)
	if err != nil {
		return err
	}
	if !super {
		return apperrors.ErrForbidden
	}

	subject, err := s.resolveSubject(ctx, input.SubjectType, input.SubjectID)
	if err != nil {
		return err
	}

	store := s.engine.Store()
	for _, raw := range input.Permissions {
		perm := access.Permission(raw)
		if !perm.Valid() {
			return apperrors.NewBadRequest("unknown permission " + raw)
		}
		if err := store.Grant(ctx, subject, kind, recordID, perm, &callerID); err != nil {
			return apperrors.Wrap(err, "write grant")
		}
	}
	return nil
}

func (s *GrantService) loadProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &project, nil
}

func (s *GrantService) authorizeGrantor(ctx context.Context, callerID string, project *models.Project) error {
	allowed, err := s.engine.Can(ctx, callerID, project, access.PermissionAdd)
	if err != nil {
		return apperrors.Wrap(err, "access decision")
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// resolveSubject checks the subject actually exists before a grant is
// written for it.
func (s *GrantService) resolveSubject(ctx context.Context, subjectType, subjectID string) (access.Subject, error) {
	switch subjectType {
	case access.SubjectTypeUser:
		var user models.User
		if err := s.db.WithContext(ctx).Select("id").First(&user, "id = ?", subjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Subject{}, apperrors.NewBadRequest("user does not exist")
			}
			return access.Subject{}, apperrors.Wrap(err, "load user")
		}
		return access.UserSubject(user.ID), nil
	case access.SubjectTypeGroup:
		var group models.ResearchGroup
		if err := s.db.WithContext(ctx).Select("id").First(&group, "id = ?", subjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Subject{}, apperrors.NewBadRequest("research group does not exist")
			}
			return access.Subject{}, apperrors.Wrap(err, "load group")
		}
		return access.GroupSubject(group.ID), nil
	}
	return access.Subject{}, apperrors.NewBadRequest("unknown subject type")
}
