package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/models"
	"github.com/cgdb-project/cgdb/pkg/logger"
	"github.com/cgdb-project/cgdb/pkg/metrics"
)

const defaultDrainBatchSize = 100

// Hook implements the creation grant hook as an outbox. Enqueue writes
// a task row inside the transaction that creates a record; Drain runs
// after that transaction commits and turns pending tasks into creator
// grants in a second transaction. A reader between the two commits sees
// the record without its creator grant; that window is part of the
// contract, and the cron maintenance drain makes a crashed process
// converge.
type Hook struct {
	db        *gorm.DB
	log       *zap.Logger
	batchSize int
	now       func() time.Time
}

// HookOption customises the Hook.
type HookOption func(*Hook)

// WithBatchSize bounds how many tasks one Drain pass loads at a time.
func WithBatchSize(n int) HookOption {
	return func(h *Hook) {
		if n > 0 {
			h.batchSize = n
		}
	}
}

// WithNow overrides the clock, primarily for testing.
func WithNow(now func() time.Time) HookOption {
	return func(h *Hook) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHook constructs the creation grant hook.
func NewHook(db *gorm.DB, opts ...HookOption) (*Hook, error) {
	if db == nil {
		return nil, errors.New("creation grant hook: db is required")
	}

	hook := &Hook{
		db:        db,
		log:       logger.WithModule("access.hook"),
		batchSize: defaultDrainBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(hook)
	}
	return hook, nil
}

// Enqueue schedules creator grants for a newly created record. It must
// be called with the transaction that creates the record so the task
// rolls back with it. Records without a recorded creator are skipped.
func (h *Hook) Enqueue(tx *gorm.DB, rec CreatedRecord) error {
	if tx == nil {
		return errors.New("creation grant hook: tx is required")
	}
	if rec == nil {
		return errors.New("creation grant hook: record is required")
	}

	creator := rec.CreatedBy()
	if creator == nil || *creator == "" {
		return nil
	}

	task := models.CreatorGrantTask{
		PrincipalID:  *creator,
		ResourceKind: rec.RecordKind(),
		ResourceID:   rec.RecordID(),
	}
	if err := tx.Create(&task).Error; err != nil {
		return fmt.Errorf("creation grant hook: enqueue: %w", err)
	}
	return nil
}

// Drain processes pending tasks in bounded batches and returns how many
// were completed. Each task grants the creator the full permission set
// on the created record; grant writes are idempotent, so re-draining a
// task that previously failed halfway is safe.
func (h *Hook) Drain(ctx context.Context) (int, error) {
	processed := 0

	for {
		var tasks []models.CreatorGrantTask
		if err := h.db.WithContext(ctx).
			Where("processed_at IS NULL").
			Order("created_at").
			Limit(h.batchSize).
			Find(&tasks).Error; err != nil {
			return processed, fmt.Errorf("creation grant hook: load tasks: %w", err)
		}
		if len(tasks) == 0 {
			return processed, nil
		}

		for _, task := range tasks {
			if err := h.process(ctx, task); err != nil {
				metrics.CreatorGrantTasks.WithLabelValues("error").Inc()
				return processed, err
			}
			metrics.CreatorGrantTasks.WithLabelValues("done").Inc()
			processed++
		}
	}
}

func (h *Hook) process(ctx context.Context, task models.CreatorGrantTask) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := NewStore(tx)
		if err != nil {
			return err
		}

		subject := UserSubject(task.PrincipalID)
		for _, perm := range AllPermissions {
			if err := store.Grant(ctx, subject, task.ResourceKind, task.ResourceID, perm, &task.PrincipalID); err != nil {
				return err
			}
		}

		now := h.now()
		if err := tx.Model(&models.CreatorGrantTask{}).
			Where("id = ?", task.ID).
			Update("processed_at", now).Error; err != nil {
			return fmt.Errorf("creation grant hook: mark processed: %w", err)
		}

		h.log.Debug("creator grants issued",
			zap.String("principal_id", task.PrincipalID),
			zap.String("resource_kind", task.ResourceKind),
			zap.String("resource_id", task.ResourceID),
		)
		return nil
	})
}

// Prune removes processed task rows older than the retention window.
func (h *Hook) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := h.now().Add(-retention)
	result := h.db.WithContext(ctx).
		Where("processed_at IS NOT NULL AND processed_at < ?", cutoff).
		Delete(&models.CreatorGrantTask{})
	if result.Error != nil {
		return 0, fmt.Errorf("creation grant hook: prune: %w", result.Error)
	}
	return result.RowsAffected, nil
}
