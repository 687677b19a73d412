package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cgdb-project/cgdb/internal/models"
)

func TestStoreGrantIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := createUser(t, db, "alice", false)
	project := createProject(t, db, "p")
	subject := UserSubject(user.ID)

	require.NoError(t, store.Grant(ctx, subject, models.KindProject, project.ID, PermissionView, nil))
	require.NoError(t, store.Grant(ctx, subject, models.KindProject, project.ID, PermissionView, nil))

	var count int64
	require.NoError(t, db.Model(&models.Grant{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestStoreGrantsOnlyAccumulate(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := createUser(t, db, "bob", false)
	project := createProject(t, db, "p")
	subject := UserSubject(user.ID)
	subjects := []Subject{subject}

	require.NoError(t, store.Grant(ctx, subject, models.KindProject, project.ID, PermissionView, nil))
	require.NoError(t, store.Grant(ctx, subject, models.KindProject, project.ID, PermissionChange, nil))

	// Adding change must not disturb the earlier view grant.
	has, err := store.HasGrant(ctx, subjects, models.KindProject, project.ID, PermissionView)
	require.NoError(t, err)
	require.True(t, has)
	has, err = store.HasGrant(ctx, subjects, models.KindProject, project.ID, PermissionChange)
	require.NoError(t, err)
	require.True(t, has)
	has, err = store.HasGrant(ctx, subjects, models.KindProject, project.ID, PermissionDelete)
	require.NoError(t, err)
	require.False(t, has)
}

func TestStoreGrantValidatesInput(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.Error(t, store.Grant(ctx, Subject{}, models.KindProject, "id", PermissionView, nil))
	require.Error(t, store.Grant(ctx, UserSubject("u"), "", "id", PermissionView, nil))
	require.Error(t, store.Grant(ctx, UserSubject("u"), models.KindProject, "", PermissionView, nil))
	require.Error(t, store.Grant(ctx, UserSubject("u"), models.KindProject, "id", Permission("own"), nil))
}

func TestStoreProjectsWithGrantUnionsSubjects(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	group := createGroup(t, db, "g")
	user := createUser(t, db, "carol", false, *group)
	direct := createProject(t, db, "direct")
	viaGroup := createProject(t, db, "via-group")
	unrelated := createProject(t, db, "unrelated")

	require.NoError(t, store.Grant(ctx, UserSubject(user.ID), models.KindProject, direct.ID, PermissionView, nil))
	require.NoError(t, store.Grant(ctx, GroupSubject(group.ID), models.KindProject, viaGroup.ID, PermissionView, nil))
	require.NoError(t, store.Grant(ctx, UserSubject(user.ID), models.KindProject, unrelated.ID, PermissionChange, nil))

	ids, err := store.ProjectsWithGrant(ctx, []Subject{UserSubject(user.ID), GroupSubject(group.ID)}, PermissionView)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{direct.ID, viaGroup.ID}, ids)

	// No subjects means no reachable projects, not an error.
	ids, err = store.ProjectsWithGrant(ctx, nil, PermissionView)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestStoreResourceIDsAreDistinct(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	group := createGroup(t, db, "g")
	user := createUser(t, db, "dave", false, *group)
	reference := createReference(t, db, "r")

	// Same record reachable through both subjects must appear once.
	require.NoError(t, store.Grant(ctx, UserSubject(user.ID), models.KindReference, reference.ID, PermissionView, nil))
	require.NoError(t, store.Grant(ctx, GroupSubject(group.ID), models.KindReference, reference.ID, PermissionView, nil))

	ids, err := store.ResourceIDsWithGrant(ctx, []Subject{UserSubject(user.ID), GroupSubject(group.ID)}, models.KindReference, PermissionView)
	require.NoError(t, err)
	require.Equal(t, []string{reference.ID}, ids)
}
