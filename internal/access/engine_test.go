package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cgdb-project/cgdb/internal/models"
)

func TestCanSuperuserBypassesEverything(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", true)
	project := createProject(t, db, "glacial-lakes")
	location := createLocation(t, db, "LOC-001", &project.ID, models.DataSourceInternal)
	literature := createLocation(t, db, "LIT-001", nil, models.DataSourceLiterature)
	reference := createReference(t, db, "Holocene shoreline displacement")

	records := []Record{project, location, literature, reference}
	for _, rec := range records {
		for _, perm := range AllPermissions {
			allowed, err := engine.Can(ctx, admin.ID, rec, perm)
			require.NoError(t, err)
			require.True(t, allowed, "superuser denied %s on %s", perm, rec.RecordKind())
		}
	}
}

func TestCanDirectOwnershipFollowsProjectGrants(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "alice", false)
	mine := createProject(t, db, "mine")
	other := createProject(t, db, "other")
	grantOnProject(t, engine.Store(), UserSubject(user.ID), mine.ID, PermissionView)

	area := createStudyArea(t, db, "delta", mine.ID)
	foreignArea := createStudyArea(t, db, "ridge", other.ID)

	allowed, err := engine.Can(ctx, user.ID, area, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	// The grant is per permission kind, not blanket.
	allowed, err = engine.Can(ctx, user.ID, area, PermissionChange)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = engine.Can(ctx, user.ID, foreignArea, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanGroupGrantsExtendToMembers(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	group := createGroup(t, db, "coastal-team")
	member := createUser(t, db, "bob", false, *group)
	outsider := createUser(t, db, "carol", false)

	project := createProject(t, db, "coastal")
	grantOnProject(t, engine.Store(), GroupSubject(group.ID), project.ID, PermissionView)

	area := createStudyArea(t, db, "bay", project.ID)

	allowed, err := engine.Can(ctx, member.ID, area, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, outsider.ID, area, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanNestedOwnershipWalksToProject(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "dora", false)
	project := createProject(t, db, "moraines")
	grantOnProject(t, engine.Store(), UserSubject(user.ID), project.ID, PermissionView, PermissionChange)

	area := createStudyArea(t, db, "foreland", project.ID)
	site := createSite(t, db, "S1", area)

	allowed, err := engine.Can(ctx, user.ID, site, PermissionChange)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, user.ID, site, PermissionDelete)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanUnresolvableOwnershipDenies(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "erin", false)
	project := createProject(t, db, "lowlands")
	grantOnProject(t, engine.Store(), UserSubject(user.ID), project.ID, PermissionView)

	// A site whose study area was not loaded cannot resolve its
	// project; the engine fails closed instead of guessing.
	area := createStudyArea(t, db, "plain", project.ID)
	bare := &models.Site{Label: "S9", StudyAreaID: area.ID}
	require.NoError(t, db.Create(bare).Error)

	allowed, err := engine.Can(ctx, user.ID, bare, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)

	// Same for a sample carrying neither a project nor a location.
	orphan := createSample(t, db, "SMP-ORPHAN", nil, nil)
	allowed, err = engine.Can(ctx, user.ID, orphan, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanHybridEitherPathGrantsAccess(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	direct := createProject(t, db, "direct")
	nested := createProject(t, db, "nested")
	location := createLocation(t, db, "LOC-HYB", &nested.ID, models.DataSourceInternal)

	// Direct project and location project deliberately disagree.
	sample := createSample(t, db, "SMP-HYB", &direct.ID, location)

	directHolder := createUser(t, db, "frank", false)
	nestedHolder := createUser(t, db, "grace", false)
	neither := createUser(t, db, "henry", false)
	grantOnProject(t, engine.Store(), UserSubject(directHolder.ID), direct.ID, PermissionView)
	grantOnProject(t, engine.Store(), UserSubject(nestedHolder.ID), nested.ID, PermissionView)

	allowed, err := engine.Can(ctx, directHolder.ID, sample, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, nestedHolder.ID, sample, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, neither.ID, sample, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanLiteratureExemptionIsAsymmetric(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "ivy", false)
	admin := createUser(t, db, "root", true)
	literature := createLocation(t, db, "LIT-100", nil, models.DataSourceLiterature)

	allowed, err := engine.Can(ctx, user.ID, literature, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, user.ID, literature, PermissionChange)
	require.NoError(t, err)
	require.True(t, allowed)

	// Deletion of literature data stays superuser-only.
	allowed, err = engine.Can(ctx, user.ID, literature, PermissionDelete)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = engine.Can(ctx, admin.ID, literature, PermissionDelete)
	require.NoError(t, err)
	require.True(t, allowed)

	// Internal locations get no exemption at all.
	project := createProject(t, db, "internal")
	internal := createLocation(t, db, "INT-100", &project.ID, models.DataSourceInternal)
	allowed, err = engine.Can(ctx, user.ID, internal, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCanUnownedKindUsesPerRecordGrants(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "jane", false)
	reference := createReference(t, db, "Grain size atlas")

	allowed, err := engine.Can(ctx, user.ID, reference, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, engine.Store().Grant(ctx, UserSubject(user.ID), models.KindReference, reference.ID, PermissionView, nil))

	allowed, err = engine.Can(ctx, user.ID, reference, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = engine.Can(ctx, user.ID, reference, PermissionChange)
	require.NoError(t, err)
	require.False(t, allowed)
}

type bogusRecord struct{}

func (bogusRecord) RecordKind() string { return "bogus" }
func (bogusRecord) RecordID() string   { return "1" }

func TestCanRejectsUnknownKindsAndPermissions(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	user := createUser(t, db, "kyle", false)

	_, err := engine.Can(ctx, user.ID, bogusRecord{}, PermissionView)
	require.ErrorIs(t, err, ErrUnknownKind)

	project := createProject(t, db, "p")
	_, err = engine.Can(ctx, user.ID, project, Permission("publish"))
	require.Error(t, err)

	_, err = engine.Can(ctx, "", project, PermissionView)
	require.Error(t, err)
}

// Exercises the full lifecycle: a creator gets full rights on the
// record they made, a group viewer gets exactly view, and everyone else
// gets nothing.
func TestCreatorGroupViewerAndStrangerLifecycle(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	viewers := createGroup(t, db, "viewers")
	creator := createUser(t, db, "creator", false)
	viewer := createUser(t, db, "viewer", false, *viewers)
	stranger := createUser(t, db, "stranger", false)

	project := createProject(t, db, "shared")
	grantOnProject(t, engine.Store(), UserSubject(creator.ID), project.ID, AllPermissions...)
	grantOnProject(t, engine.Store(), GroupSubject(viewers.ID), project.ID, PermissionView)

	hook, err := NewHook(db)
	require.NoError(t, err)

	location := &models.Location{
		Identifier: "LOC-LIFE",
		DataSource: models.DataSourceInternal,
		ProjectID:  &project.ID,
	}
	location.CreatedByID = &creator.ID
	require.NoError(t, db.Create(location).Error)
	require.NoError(t, hook.Enqueue(db, location))
	_, err = hook.Drain(ctx)
	require.NoError(t, err)

	for _, perm := range AllPermissions {
		allowed, err := engine.Can(ctx, creator.ID, location, perm)
		require.NoError(t, err)
		require.True(t, allowed, "creator denied %s", perm)
	}

	allowed, err := engine.Can(ctx, viewer.ID, location, PermissionView)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, err = engine.Can(ctx, viewer.ID, location, PermissionChange)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = engine.Can(ctx, stranger.ID, location, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)

	scope, err := engine.Scope(ctx, stranger.ID, models.KindLocation)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, db.Model(&models.Location{}).Scopes(scope).Pluck("id", &ids).Error)
	require.NotContains(t, ids, location.ID)
}

func TestCreatorGrantsWorkWithoutProjectMembership(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	ctx := context.Background()

	creator := createUser(t, db, "fieldworker", false)
	bystander := createUser(t, db, "bystander", false)
	project := createProject(t, db, "unshared")

	hook, err := NewHook(db)
	require.NoError(t, err)

	// The creator holds no grant on the owning project; only the
	// per-record grants written by the hook apply.
	location := &models.Location{
		Identifier: "LOC-SOLO",
		DataSource: models.DataSourceInternal,
		ProjectID:  &project.ID,
	}
	location.CreatedByID = &creator.ID
	require.NoError(t, db.Create(location).Error)
	require.NoError(t, hook.Enqueue(db, location))
	_, err = hook.Drain(ctx)
	require.NoError(t, err)

	for _, perm := range AllPermissions {
		allowed, err := engine.Can(ctx, creator.ID, location, perm)
		require.NoError(t, err)
		require.True(t, allowed, "creator denied %s on their own record", perm)
	}

	scope, err := engine.Scope(ctx, creator.ID, models.KindLocation)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, db.Model(&models.Location{}).Scopes(scope).Pluck("id", &ids).Error)
	require.Contains(t, ids, location.ID)

	// The per-record grant is the creator's alone.
	allowed, err := engine.Can(ctx, bystander.ID, location, PermissionView)
	require.NoError(t, err)
	require.False(t, allowed)

	scope, err = engine.Scope(ctx, bystander.ID, models.KindLocation)
	require.NoError(t, err)
	ids = nil
	require.NoError(t, db.Model(&models.Location{}).Scopes(scope).Pluck("id", &ids).Error)
	require.NotContains(t, ids, location.ID)
}
