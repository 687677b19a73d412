package access

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/models"
)

// Scope returns a gorm scope restricting a listing of the record kind
// to records the user may view. The predicate is built from the same
// descriptor metadata Can walks, evaluated as set membership against
// the accessible projects instead of per row; for every record r of the
// kind, r matches the scope exactly when Can(user, r, view) is true.
//
// Callers must AND the scope into their queries (gorm scopes always
// AND), never OR it with business filters.
func (e *Engine) Scope(ctx context.Context, userID string, kind string) (func(*gorm.DB) *gorm.DB, error) {
	user, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	def, ok := Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}

	if user.IsSuperuser {
		return matchAll, nil
	}

	subjects := SubjectsFor(user)

	if def.Descriptor.Shape() == ShapeNone {
		ids, err := e.store.ResourceIDsWithGrant(ctx, subjects, kind, PermissionView)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return matchNone, nil
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN ?", ids)
		}, nil
	}

	set, err := e.resolver.AccessibleProjects(ctx, user, PermissionView)
	if err != nil {
		return nil, err
	}

	// Records granted individually (the creation grant hook writes
	// these) stay visible alongside the project-owned ones.
	grantedIDs, err := e.store.ResourceIDsWithGrant(ctx, subjects, kind, PermissionView)
	if err != nil {
		return nil, err
	}

	condition, args := ownershipCondition(def, set.IDs(), grantedIDs)
	if condition == "" {
		return matchNone, nil
	}

	return func(db *gorm.DB) *gorm.DB {
		return db.Where(condition, args...)
	}, nil
}

// ownershipCondition renders the visibility predicate for a kind with
// project ownership. An empty condition means nothing can match.
func ownershipCondition(def *Definition, projectIDs, grantedIDs []string) (string, []any) {
	var condition string
	var args []any

	if len(projectIDs) > 0 {
		d := def.Descriptor
		switch d.Shape() {
		case ShapeDirect:
			condition = d.directCondition()
			args = append(args, projectIDs)
		case ShapeNested:
			condition = d.nestedCondition()
			args = append(args, projectIDs)
		case ShapeHybrid:
			condition = fmt.Sprintf("(%s OR %s)", d.directCondition(), d.nestedCondition())
			args = append(args, projectIDs, projectIDs)
		}
	}

	if len(grantedIDs) > 0 {
		granted := "id IN ?"
		if condition == "" {
			condition = granted
		} else {
			condition = fmt.Sprintf("(%s OR %s)", condition, granted)
		}
		args = append(args, grantedIDs)
	}

	if def.Literature != nil {
		literature := fmt.Sprintf("%s = ?", def.Literature.Column)
		if condition == "" {
			condition = literature
		} else {
			condition = fmt.Sprintf("(%s OR %s)", condition, literature)
		}
		args = append(args, models.DataSourceLiterature)
	}

	return condition, args
}

func matchAll(db *gorm.DB) *gorm.DB {
	return db
}

func matchNone(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}
