package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/models"
	apperrors "github.com/cgdb-project/cgdb/pkg/errors"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// normalizeOptionalID trims an optional id field, mapping empty strings
// to nil.
func normalizeOptionalID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return apperrors.Wrap(err, "database error")
}

func isSuperuser(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	var user models.User
	if err := db.WithContext(ctx).Select("id", "is_superuser").First(&user, "id = ?", userID).Error; err != nil {
		return false, translateNotFound(err)
	}
	return user.IsSuperuser, nil
}
