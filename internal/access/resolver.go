package access

import (
	"context"
	"errors"
	"sort"

	"github.com/cgdb-project/cgdb/internal/models"
)

// ProjectSet is the result of project membership resolution. For
// superusers All is true and IDs stays empty; callers must branch on
// All instead of expecting the universe to be materialised.
type ProjectSet struct {
	All bool
	ids map[string]struct{}
}

// Contains reports whether the project is in the set.
func (s ProjectSet) Contains(projectID string) bool {
	if s.All {
		return true
	}
	_, ok := s.ids[projectID]
	return ok
}

// IDs returns the materialised project ids in sorted order. Empty for
// the all-projects set.
func (s ProjectSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of materialised ids.
func (s ProjectSet) Len() int {
	return len(s.ids)
}

// Resolver computes which projects a principal can reach for a given
// permission kind. Results always reflect the latest committed grants;
// there is no cache, so two calls around a grant write may differ.
type Resolver struct {
	store *Store
}

// NewResolver constructs a membership resolver over the grant store.
func NewResolver(store *Store) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("membership resolver: store is required")
	}
	return &Resolver{store: store}, nil
}

// AccessibleProjects returns the projects the user can reach with the
// permission, as the union of direct user grants and grants held by any
// of the user's groups. Groups must be preloaded on the user.
func (r *Resolver) AccessibleProjects(ctx context.Context, user *models.User, perm Permission) (ProjectSet, error) {
	if user == nil {
		return ProjectSet{}, errors.New("membership resolver: user is required")
	}

	if user.IsSuperuser {
		return ProjectSet{All: true}, nil
	}

	ids, err := r.store.ProjectsWithGrant(ctx, SubjectsFor(user), perm)
	if err != nil {
		return ProjectSet{}, err
	}

	set := ProjectSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set, nil
}
