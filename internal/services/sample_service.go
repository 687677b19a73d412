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

// SampleService manages physical samples. A sample needs a project or a
// location; when only a location is given the location's project is
// copied onto the sample so the nested paths below samples stay a
// single hop.
type SampleService struct {
	db     *gorm.DB
	engine *access.Engine
	hook   *access.Hook
	log    *zap.Logger
}

// NewSampleService constructs a SampleService.
func NewSampleService(db *gorm.DB, engine *access.Engine, hook *access.Hook) (*SampleService, error) {
	if db == nil {
		return nil, errors.New("sample service: db is required")
	}
	if engine == nil {
		return nil, errors.New("sample service: engine is required")
	}
	if hook == nil {
		return nil, errors.New("sample service: hook is required")
	}
	return &SampleService{
		db:     db,
		engine: engine,
		hook:   hook,
		log:    logger.WithModule("services.sample"),
	}, nil
}

// CreateSampleInput describes a new sample.
type CreateSampleInput struct {
	Identifier  string     `json:"identifier" validate:"required,max=40"`
	IGSN        string     `json:"igsn" validate:"omitempty,max=100"`
	ProjectID   *string    `json:"project_id"`
	LocationID  *string    `json:"location_id"`
	LayerID     *string    `json:"layer_id"`
	TypeID      *string    `json:"type_id"`
	Date        *time.Time `json:"date"`
	Material    string     `json:"material" validate:"omitempty,max=40"`
	DepthTop    *float64   `json:"depth_top"`
	DepthBottom *float64   `json:"depth_bottom"`
	Weight      *float64   `json:"weight"`
}

// Create stores a new sample and schedules the creator grants. The
// caller needs add on the owning project; when both a project and a
// location are given they must agree.
func (s *SampleService) Create(ctx context.Context, userID string, input CreateSampleInput) (*models.Sample, error) {
	ctx = ensureContext(ctx)

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return nil, apperrors.NewBadRequest("sample identifier is required")
	}

	sample := &models.Sample{
		Identifier:  identifier,
		IGSN:        strings.TrimSpace(input.IGSN),
		ProjectID:   normalizeOptionalID(input.ProjectID),
		LocationID:  normalizeOptionalID(input.LocationID),
		LayerID:     normalizeOptionalID(input.LayerID),
		TypeID:      normalizeOptionalID(input.TypeID),
		Date:        input.Date,
		Material:    strings.TrimSpace(input.Material),
		DepthTop:    input.DepthTop,
		DepthBottom: input.DepthBottom,
		Weight:      input.Weight,
	}
	sample.CreatedByID = &userID

	if sample.ProjectID == nil && sample.LocationID == nil {
		return nil, apperrors.NewBadRequest("sample requires a project or a location")
	}

	if sample.LocationID != nil {
		var location models.Location
		if err := s.db.WithContext(ctx).First(&location, "id = ?", *sample.LocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewBadRequest("location does not exist")
			}
			return nil, apperrors.Wrap(err, "load location")
		}

		switch {
		case sample.ProjectID == nil:
			// Keep the direct project in sync with the location so
			// grain-size measurements resolve with one hop.
			sample.ProjectID = location.ProjectID
		case location.ProjectID != nil && *location.ProjectID != *sample.ProjectID:
			return nil, apperrors.NewBadRequest("sample project and location project disagree")
		}
	}

	if sample.ProjectID == nil {
		// Literature locations carry no project; samples under them
		// would be unreachable for everyone but superusers.
		super, err := isSuperuser(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		if !super {
			return nil, apperrors.ErrForbidden
		}
	} else if err := s.authorizeProjectAdd(ctx, userID, *sample.ProjectID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sample).Error; err != nil {
			return apperrors.Wrap(err, "create sample")
		}
		return s.hook.Enqueue(tx, sample)
	})
	if err != nil {
		return nil, err
	}

	s.drain(ctx)
	return sample, nil
}

// List returns the samples visible to the user.
func (s *SampleService) List(ctx context.Context, userID string, page, perPage int) ([]models.Sample, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalizePage(page, perPage)

	scope, err := s.engine.Scope(ctx, userID, models.KindSample)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "build scope")
	}

	query := s.db.WithContext(ctx).Model(&models.Sample{}).Scopes(scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count samples")
	}

	var samples []models.Sample
	if err := query.Order("identifier").Scopes(paginate(page, perPage)).Find(&samples).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list samples")
	}
	return samples, total, nil
}

// Get returns one sample when the user may view it.
func (s *SampleService) Get(ctx context.Context, userID, sampleID string) (*models.Sample, error) {
	ctx = ensureContext(ctx)

	sample, err := s.load(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	return sample, s.authorize(ctx, userID, sample, access.PermissionView)
}

// UpdateSampleInput carries the mutable sample fields. Ownership fields
// are immutable after creation.
type UpdateSampleInput struct {
	IGSN        *string    `json:"igsn" validate:"omitempty,max=100"`
	TypeID      *string    `json:"type_id"`
	Date        *time.Time `json:"date"`
	Material    *string    `json:"material" validate:"omitempty,max=40"`
	DepthTop    *float64   `json:"depth_top"`
	DepthBottom *float64   `json:"depth_bottom"`
	Weight      *float64   `json:"weight"`
}

// Update applies changes when the user holds change on the sample.
func (s *SampleService) Update(ctx context.Context, userID, sampleID string, input UpdateSampleInput) (*models.Sample, error) {
	ctx = ensureContext(ctx)

	sample, err := s.load(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, sample, access.PermissionChange); err != nil {
		return nil, err
	}

	if input.IGSN != nil {
		sample.IGSN = strings.TrimSpace(*input.IGSN)
	}
	if input.TypeID != nil {
		sample.TypeID = normalizeOptionalID(input.TypeID)
	}
	if input.Date != nil {
		sample.Date = input.Date
	}
	if input.Material != nil {
		sample.Material = strings.TrimSpace(*input.Material)
	}
	if input.DepthTop != nil {
		sample.DepthTop = input.DepthTop
	}
	if input.DepthBottom != nil {
		sample.DepthBottom = input.DepthBottom
	}
	if input.Weight != nil {
		sample.Weight = input.Weight
	}
	sample.UpdatedByID = &userID

	if err := s.db.WithContext(ctx).Save(sample).Error; err != nil {
		return nil, apperrors.Wrap(err, "update sample")
	}
	return sample, nil
}

// Delete removes a sample when the user holds delete on it.
func (s *SampleService) Delete(ctx context.Context, userID, sampleID string) error {
	ctx = ensureContext(ctx)

	sample, err := s.load(ctx, sampleID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, sample, access.PermissionDelete); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(sample).Error; err != nil {
		return apperrors.Wrap(err, "delete sample")
	}
	return nil
}

// load fetches a sample with the location its descriptor may walk.
func (s *SampleService) load(ctx context.Context, sampleID string) (*models.Sample, error) {
	var sample models.Sample
	if err := s.db.WithContext(ctx).Preload("Location").First(&sample, "id = ?", sampleID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &sample, nil
}

func (s *SampleService) authorize(ctx context.Context, userID string, sample *models.Sample, perm access.Permission) error {
	allowed, err := s.engine.Can(ctx, userID, sample, perm)
	if err != nil {
		return apperrors.Wrap(err, "access decision")
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *SampleService) authorizeProjectAdd(ctx context.Context, userID, projectID string) error {
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

func (s *SampleService) drain(ctx context.Context) {
	if _, err := s.hook.Drain(ctx); err != nil {
		s.log.Warn("creator grant drain failed", zap.Error(err))
	}
}
