package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/access"
	"github.com/cgdb-project/cgdb/internal/models"
	apperrors "github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/logger"
)

// LocationService manages field locations, including literature-sourced
// ones that sit outside project ownership.
type LocationService struct {
	db     *gorm.DB
	engine *access.Engine
	hook   *access.Hook
	log    *zap.Logger
}

// NewLocationService constructs a LocationService.
func NewLocationService(db *gorm.DB, engine *access.Engine, hook *access.Hook) (*LocationService, error) {
	if db == nil {
		return nil, errors.New("location service: db is required")
	}
	if engine == nil {
		return nil, errors.New("location service: engine is required")
	}
	if hook == nil {
		return nil, errors.New("location service: hook is required")
	}
	return &LocationService{
		db:     db,
		engine: engine,
		hook:   hook,
		log:    logger.WithModule("services.location"),
	}, nil
}

// CreateLocationInput describes a new location.
type CreateLocationInput struct {
	Identifier  string   `json:"identifier" validate:"required,max=50"`
	DataSource  string   `json:"data_source" validate:"omitempty,oneof=internal literature"`
	ProjectID   *string  `json:"project_id"`
	CampaignID  *string  `json:"campaign_id"`
	ReferenceID *string  `json:"reference_id"`
	Easting     *float64 `json:"easting"`
	Northing    *float64 `json:"northing"`
	Liner       bool     `json:"liner"`
	Sampling    bool     `json:"sampling"`
}

// Create stores a new location. Internal locations need an owning
// project the user holds add on; literature locations carry no project,
// so only superusers may create them.
func (s *LocationService) Create(ctx context.Context, userID string, input CreateLocationInput) (*models.Location, error) {
	ctx = ensureContext(ctx)

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return nil, apperrors.NewBadRequest("location identifier is required")
	}

	dataSource := input.DataSource
	if dataSource == "" {
		dataSource = models.DataSourceInternal
	}

	location := &models.Location{
		Identifier:  identifier,
		DataSource:  dataSource,
		ProjectID:   normalizeOptionalID(input.ProjectID),
		CampaignID:  normalizeOptionalID(input.CampaignID),
		ReferenceID: normalizeOptionalID(input.ReferenceID),
		Easting:     input.Easting,
		Northing:    input.Northing,
		Liner:       input.Liner,
		Sampling:    input.Sampling,
	}
	location.CreatedByID = &userID

	switch dataSource {
	case models.DataSourceLiterature:
		super, err := isSuperuser(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		if !super {
			return nil, apperrors.ErrForbidden
		}
	case models.DataSourceInternal:
		if location.ProjectID == nil {
			return nil, apperrors.NewBadRequest("internal locations require a project")
		}
		if err := s.authorizeProjectAdd(ctx, userID, *location.ProjectID); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewBadRequest("unknown data source")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(location).Error; err != nil {
			return apperrors.Wrap(err, "create location")
		}
		return s.hook.Enqueue(tx, location)
	})
	if err != nil {
		return nil, err
	}

	s.drain(ctx)
	return location, nil
}

// List returns the locations visible to the user: owned-project ones
// plus all literature locations.
func (s *LocationService) List(ctx context.Context, userID string, page, perPage int) ([]models.Location, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalizePage(page, perPage)

	scope, err := s.engine.Scope(ctx, userID, models.KindLocation)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "build scope")
	}

	query := s.db.WithContext(ctx).Model(&models.Location{}).Scopes(scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count locations")
	}

	var locations []models.Location
	if err := query.Order("identifier").Scopes(paginate(page, perPage)).Find(&locations).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list locations")
	}
	return locations, total, nil
}

// Get returns one location when the user may view it.
func (s *LocationService) Get(ctx context.Context, userID, locationID string) (*models.Location, error) {
	ctx = ensureContext(ctx)

	location, err := s.load(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return location, s.authorize(ctx, userID, location, access.PermissionView)
}

// UpdateLocationInput carries the mutable location fields. Ownership
// fields (project, data source) are immutable after creation.
type UpdateLocationInput struct {
	CampaignID  *string  `json:"campaign_id"`
	ReferenceID *string  `json:"reference_id"`
	Easting     *float64 `json:"easting"`
	Northing    *float64 `json:"northing"`
	Liner       *bool    `json:"liner"`
	Sampling    *bool    `json:"sampling"`
}

// Update applies changes when the user holds change on the location.
func (s *LocationService) Update(ctx context.Context, userID, locationID string, input UpdateLocationInput) (*models.Location, error) {
	ctx = ensureContext(ctx)

	location, err := s.load(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, location, access.PermissionChange); err != nil {
		return nil, err
	}

	if input.CampaignID != nil {
		location.CampaignID = normalizeOptionalID(input.CampaignID)
	}
	if input.ReferenceID != nil {
		location.ReferenceID = normalizeOptionalID(input.ReferenceID)
	}
	if input.Easting != nil {
		location.Easting = input.Easting
	}
	if input.Northing != nil {
		location.Northing = input.Northing
	}
	if input.Liner != nil {
		location.Liner = *input.Liner
	}
	if input.Sampling != nil {
		location.Sampling = *input.Sampling
	}
	location.UpdatedByID = &userID

	if err := s.db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, apperrors.Wrap(err, "update location")
	}
	return location, nil
}

// Delete removes a location when the user holds delete on it. For
// literature locations this means superusers only.
func (s *LocationService) Delete(ctx context.Context, userID, locationID string) error {
	ctx = ensureContext(ctx)

	location, err := s.load(ctx, locationID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, location, access.PermissionDelete); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(location).Error; err != nil {
		return apperrors.Wrap(err, "delete location")
	}
	return nil
}

func (s *LocationService) load(ctx context.Context, locationID string) (*models.Location, error) {
	var location models.Location
	if err := s.db.WithContext(ctx).First(&location, "id = ?", locationID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &location, nil
}

func (s *LocationService) authorize(ctx context.Context, userID string, location *models.Location, perm access.Permission) error {
	allowed, err := s.engine.Can(ctx, userID, location, perm)
	if err != nil {
		return apperrors.Wrap(err, "access decision")
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// authorizeProjectAdd checks add on the owning project for record
// creation under it.
func (s *LocationService) authorizeProjectAdd(ctx context.Context, userID, projectID string) error {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewBadRequest("project does not exist")
		}
		return apperrors.Wrap(err, "load project")
	}

	allowed, err := s.engine.Can(ctx, userID, &project, access.PermissionAdd)
	if err != nil {
		return apperrors.Wrap(err, "access decision")
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *LocationService) drain(ctx context.Context) {
	if _, err := s.hook.Drain(ctx); err != nil {
		s.log.Warn("creator grant drain failed", zap.Error(err))
	}
}
