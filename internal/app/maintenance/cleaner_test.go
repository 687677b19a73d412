package maintenance

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cgdb-project/cgdb/internal/access"
	"github.com/cgdb-project/cgdb/internal/database"
	"github.com/cgdb-project/cgdb/internal/models"
)

func setupCleaner(t *testing.T) (*gorm.DB, *access.Hook, *Cleaner) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hook, err := access.NewHook(db)
	require.NoError(t, err)
	cleaner, err := NewCleaner(hook)
	require.NoError(t, err)
	return db, hook, cleaner
}

func TestRunOnceDrainsPendingTasks(t *testing.T) {
	db, hook, cleaner := setupCleaner(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@example.org", Password: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	reference := &models.Reference{Title: "orphaned outbox entry"}
	reference.CreatedByID = &user.ID
	require.NoError(t, db.Create(reference).Error)
	require.NoError(t, hook.Enqueue(db, reference))

	// Simulates a restart after a crash between commit and drain.
	require.NoError(t, cleaner.RunOnce(ctx))

	var pending int64
	require.NoError(t, db.Model(&models.CreatorGrantTask{}).
		Where("processed_at IS NULL").Count(&pending).Error)
	require.Zero(t, pending)

	var grants int64
	require.NoError(t, db.Model(&models.Grant{}).Count(&grants).Error)
	require.EqualValues(t, 4, grants)
}

func TestCleanerStartAndStop(t *testing.T) {
	_, _, cleaner := setupCleaner(t)

	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.Stop(context.Background()))
}

func TestCleanerRejectsBadSchedules(t *testing.T) {
	_, hook, _ := setupCleaner(t)

	cleaner, err := NewCleaner(hook, WithDrainSchedule("not-a-spec"))
	require.NoError(t, err)
	require.Error(t, cleaner.Start())
}
