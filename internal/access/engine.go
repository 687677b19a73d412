package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/models"
	"github.com/cgdb-project/cgdb/pkg/metrics"
)

// Engine is the access decision engine. It is stateless apart from its
// database handle; every decision reads the committed grant state.
type Engine struct {
	db       *gorm.DB
	store    *Store
	resolver *Resolver
}

// NewEngine constructs the decision engine over the provided database.
func NewEngine(db *gorm.DB) (*Engine, error) {
	if db == nil {
		return nil, errors.New("access engine: db is required")
	}

	store, err := NewStore(db)
	if err != nil {
		return nil, err
	}
	resolver, err := NewResolver(store)
	if err != nil {
		return nil, err
	}

	return &Engine{db: db, store: store, resolver: resolver}, nil
}

// Store exposes the underlying grant store.
func (e *Engine) Store() *Store {
	return e.store
}

// Resolver exposes the project membership resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Can decides whether the user may exercise the permission on the
// record. It is a pure predicate: denial is a false return, not an
// error. Errors are reserved for infrastructure failures and unknown
// record kinds.
//
// The record must be loaded with the associations its descriptor walks
// (e.g. a Site needs its StudyArea preloaded); an absent association is
// treated as "no project" and denied for non-superusers.
func (e *Engine) Can(ctx context.Context, userID string, rec Record, perm Permission) (bool, error) {
	allowed, err := e.decide(ctx, userID, rec, perm)

	switch {
	case err != nil:
		metrics.AccessDecisions.WithLabelValues(string(perm), "error").Inc()
	case allowed:
		metrics.AccessDecisions.WithLabelValues(string(perm), "allow").Inc()
	default:
		metrics.AccessDecisions.WithLabelValues(string(perm), "deny").Inc()
	}

	return allowed, err
}

func (e *Engine) decide(ctx context.Context, userID string, rec Record, perm Permission) (bool, error) {
	if rec == nil {
		return false, errors.New("access engine: record is required")
	}
	if !perm.Valid() {
		return false, fmt.Errorf("access engine: invalid permission %q", perm)
	}

	user, err := e.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	// The single universal bypass. No later rule overrides it.
	if user.IsSuperuser {
		return true, nil
	}

	def, ok := Lookup(rec.RecordKind())
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownKind, rec.RecordKind())
	}

	// Literature-sourced records sit outside project ownership: anyone
	// may view and change them, only superusers may delete them. Add
	// is not special-cased and falls through to ownership resolution.
	if def.Literature != nil && def.Literature.Get(rec) == models.DataSourceLiterature {
		switch perm {
		case PermissionView, PermissionChange:
			return true, nil
		case PermissionDelete:
			return false, nil
		}
	}

	// Per-record grants apply to every kind, not just the unowned ones:
	// the creation grant hook writes them for whatever record was
	// created, so a creator keeps full control of their own record even
	// without any project-level grant.
	subjects := SubjectsFor(user)
	held, err := e.store.HasGrant(ctx, subjects, rec.RecordKind(), rec.RecordID(), perm)
	if err != nil {
		return false, err
	}
	if held {
		return true, nil
	}

	if def.Descriptor.Shape() == ShapeNone {
		return false, nil
	}

	candidates := def.Descriptor.CandidateProjects(rec)
	if len(candidates) == 0 {
		// Fail closed: unresolvable ownership denies.
		return false, nil
	}

	set, err := e.resolver.AccessibleProjects(ctx, user, perm)
	if err != nil {
		return false, err
	}
	for _, projectID := range candidates {
		if set.Contains(projectID) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) loadUser(ctx context.Context, userID string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("access engine: user id is required")
	}

	var user models.User
	if err := e.db.WithContext(ctx).
		Preload("Groups").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("access engine: load user: %w", err)
	}
	return &user, nil
}
