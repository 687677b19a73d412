package access

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cgdb-project/cgdb/internal/database"
	"github.com/cgdb-project/cgdb/internal/models"
)

// setupTestDB opens an isolated in-memory database named after the test
// so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) *Engine {
	t.Helper()
	engine, err := NewEngine(db)
	require.NoError(t, err)
	return engine
}

func createUser(t *testing.T, db *gorm.DB, username string, superuser bool, groups ...models.ResearchGroup) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		Email:       username + "@example.org",
		Password:    "secret",
		IsSuperuser: superuser,
		IsActive:    true,
		Groups:      groups,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createGroup(t *testing.T, db *gorm.DB, label string) *models.ResearchGroup {
	t.Helper()
	group := &models.ResearchGroup{Label: label}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createProject(t *testing.T, db *gorm.DB, label string) *models.Project {
	t.Helper()
	project := &models.Project{Title: label, Label: label}
	require.NoError(t, db.Create(project).Error)
	return project
}

func createStudyArea(t *testing.T, db *gorm.DB, label, projectID string) *models.StudyArea {
	t.Helper()
	area := &models.StudyArea{Label: label, ProjectID: projectID}
	require.NoError(t, db.Create(area).Error)
	return area
}

// createSite returns the site with its study area attached, the way the
// engine expects single records to be loaded.
func createSite(t *testing.T, db *gorm.DB, label string, area *models.StudyArea) *models.Site {
	t.Helper()
	site := &models.Site{Label: label, StudyAreaID: area.ID}
	require.NoError(t, db.Create(site).Error)
	site.StudyArea = area
	return site
}

func createLocation(t *testing.T, db *gorm.DB, identifier string, projectID *string, dataSource string) *models.Location {
	t.Helper()
	location := &models.Location{
		Identifier: identifier,
		DataSource: dataSource,
		ProjectID:  projectID,
	}
	require.NoError(t, db.Create(location).Error)
	return location
}

func createSample(t *testing.T, db *gorm.DB, identifier string, projectID *string, location *models.Location) *models.Sample {
	t.Helper()
	sample := &models.Sample{Identifier: identifier, ProjectID: projectID}
	if location != nil {
		sample.LocationID = &location.ID
	}
	require.NoError(t, db.Create(sample).Error)
	sample.Location = location
	return sample
}

func createReference(t *testing.T, db *gorm.DB, title string) *models.Reference {
	t.Helper()
	reference := &models.Reference{Title: title}
	require.NoError(t, db.Create(reference).Error)
	return reference
}

// grantOnProject writes grants for the subject on the project, one row
// per permission.
func grantOnProject(t *testing.T, store *Store, subject Subject, projectID string, perms ...Permission) {
	t.Helper()
	for _, perm := range perms {
		require.NoError(t, store.Grant(context.Background(), subject, models.KindProject, projectID, perm, nil))
	}
}
