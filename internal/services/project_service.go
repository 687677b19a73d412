package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/access"
	"github.com/cgdb-project/cgdb/internal/models"
	apperrors "github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/logger"
)

// ProjectService manages the catalog's ownership units. Every read goes
// through the engine scope and every mutation through a single-record
// decision.
type ProjectService struct {
	db     *gorm.DB
	engine *access.Engine
	hook   *access.Hook
	log    *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, engine *access.Engine, hook *access.Hook) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if engine == nil {
		return nil, errors.New("project service: engine is required")
	}
	if hook == nil {
		return nil, errors.New("project service: hook is required")
	}
	return &ProjectService{
		db:     db,
		engine: engine,
		hook:   hook,
		log:    logger.WithModule("services.project"),
	}, nil
}

// CreateProjectInput describes a new project.
type CreateProjectInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Subtitle    string     `json:"subtitle" validate:"max=200"`
	Label       string     `json:"label" validate:"required,max=50"`
	Description string     `json:"description"`
	ParentID    *string    `json:"parent_id"`
	StartDate   *time.Time `json:"start_date"`
	Deadline    *time.Time `json:"deadline"`
	Public      bool       `json:"public"`
}

// Create stores a new project and schedules the creator grants. Any
// authenticated user may start a project; the creation grant hook gives
// them full rights on it once the outbox drains.
func (s *ProjectService) Create(ctx context.Context, userID string, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("project title is required")
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, apperrors.NewBadRequest("project label is required")
	}

	project := &models.Project{
		Title:       title,
		Subtitle:    strings.TrimSpace(input.Subtitle),
		Label:       label,
		Description: input.Description,
		ParentID:    normalizeOptionalID(input.ParentID),
		StartDate:   input.StartDate,
		Deadline:    input.Deadline,
		Public:      input.Public,
	}
	project.CreatedByID = &userID

	if project.ParentID != nil {
		var parent models.Project
		if err := s.db.WithContext(ctx).First(&parent, "id = ?", *project.ParentID).Error; err != nil {
			return nil, apperrors.NewBadRequest("parent project does not exist")
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return apperrors.Wrap(err, "create project")
		}
		return s.hook.Enqueue(tx, project)
	})
	if err != nil {
		return nil, err
	}

	s.drain(ctx)
	return project, nil
}

// List returns the projects visible to the user, newest first.
func (s *ProjectService) List(ctx context.Context, userID string, page, perPage int) ([]models.Project, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalizePage(page, perPage)

	scope, err := s.engine.Scope(ctx, userID, models.KindProject)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "build scope")
	}

	query := s.db.WithContext(ctx).Model(&models.Project{}).Scopes(scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count projects")
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Scopes(paginate(page, perPage)).Find(&projects).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list projects")
	}
	return projects, total, nil
}

// Get returns a single project when the user may view it.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project, s.authorize(ctx, userID, project, access.PermissionView)
}

// UpdateProjectInput carries the mutable project fields. Nil pointers
// leave the current value untouched.
type UpdateProjectInput struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Subtitle    *string    `json:"subtitle" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED PAUSED CANCELLED"`
	StartDate   *time.Time `json:"start_date"`
	Deadline    *time.Time `json:"deadline"`
	Public      *bool      `json:"public"`
}

// Update applies the changes when the user holds change on the project.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, project, access.PermissionChange); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("project title cannot be empty")
		}
		project.Title = title
	}
	if input.Subtitle != nil {
		project.Subtitle = strings.TrimSpace(*input.Subtitle)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.Deadline != nil {
		project.Deadline = input.Deadline
	}
	if input.Public != nil {
		project.Public = *input.Public
	}
	project.UpdatedByID = &userID

	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, apperrors.Wrap(err, "update project")
	}
	return project, nil
}

// Delete removes a project when the user holds delete on it.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	ctx = ensureContext(ctx)

	project, err := s.load(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, project, access.PermissionDelete); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(project).Error; err != nil {
		return apperrors.Wrap(err, "delete project")
	}
	return nil
}

func (s *ProjectService) load(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &project, nil
}

// authorize maps every denial to the same forbidden error regardless of
// cause.
func (s *ProjectService) authorize(ctx context.Context, userID string, project *models.Project, perm access.Permission) error {
	allowed, err := s.engine.Can(ctx, userID, project, perm)
	if err != nil {
		return apperrors.Wrap(err, "access decision")
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// drain processes the creator-grant outbox after the creating
// transaction committed. Failures are logged, not returned: the cron
// maintenance drain converges later.
func (s *ProjectService) drain(ctx context.Context) {
	if _, err := s.hook.Drain(ctx); err != nil {
		s.log.Warn("creator grant drain failed", zap.Error(err))
	}
}
