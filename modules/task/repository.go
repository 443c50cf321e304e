package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/devtracker/domain/task"
	"gorm.io/gorm"
)

// Repository is the task store: durable CRUD keyed by id, queryable by
// owner. It does not enforce ownership; that is the service's job.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs the schema migration for the task table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return nil
}

// Create inserts a new task. An id collision fails with ErrConflict.
func (r *Repository) Create(ctx context.Context, t *domain.Task) error {
	result := r.db.WithContext(ctx).Create(t)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create task: %w", result.Error)
	}
	return nil
}

// FindByID retrieves a task by its id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	result := r.db.WithContext(ctx).First(&t, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", result.Error)
	}
	return &t, nil
}

// FindAllByOwner retrieves all tasks owned by ownerID, newest first.
func (r *Repository) FindAllByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var tasks []domain.Task
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", result.Error)
	}
	return tasks, nil
}

// Update persists the mutable fields of t, guarded by the version the
// caller loaded. A stale version fails with ErrConflict; a missing row
// fails with ErrNotFound.
func (r *Repository) Update(ctx context.Context, t *domain.Task, loadedVersion int64) error {
	result := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND version = ?", t.ID, loadedVersion).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"status_id":   t.StatusID,
			"priority_id": t.PriorityID,
			"due_date":    t.DueDate,
			"tags":        t.Tags,
			"version":     loadedVersion + 1,
			"updated_at":  t.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Row is either gone or was updated concurrently. A failed
		// re-read is neither; report it as the store failure it is.
		if _, err := r.FindByID(ctx, t.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return domain.ErrConflict
	}
	t.Version = loadedVersion + 1
	return nil
}

// Delete removes a task permanently. No soft delete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isDuplicateKey detects a primary key collision across GORM and the
// raw SQLite driver error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
