package task

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/devtracker/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo creates a repository over an in-memory SQLite database.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repo
}

func newTestTask(ownerID string) *domain.Task {
	now := time.Now()
	return &domain.Task{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Title:      "Write spec",
		StatusID:   "todo",
		PriorityID: "high",
		Tags:       domain.NormalizeTags([]string{"docs"}),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created := newTestTask("user-1")
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Title != created.Title {
		t.Errorf("Title = %q, want %q", found.Title, created.Title)
	}
	if found.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q, want %q", found.OwnerID, "user-1")
	}
	if len(found.Tags) != 1 || found.Tags[0] != "docs" {
		t.Errorf("Tags = %v, want [docs]", found.Tags)
	}
}

func TestRepository_Create_DuplicateID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created := newTestTask("user-1")
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := newTestTask("user-1")
	dup.ID = created.ID
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_FindAllByOwner(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		task := newTestTask("user-1")
		task.Title = "task"
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		task.UpdatedAt = task.CreatedAt
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	other := newTestTask("user-2")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tasks, err := repo.FindAllByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindAllByOwner() error = %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.OwnerID != "user-1" {
			t.Errorf("task %s owned by %q leaked into user-1's list", task.ID, task.OwnerID)
		}
	}
	// Newest first
	for i := 1; i < len(tasks); i++ {
		if tasks[i].CreatedAt.After(tasks[i-1].CreatedAt) {
			t.Errorf("tasks not ordered by created_at descending")
		}
	}
}

func TestRepository_FindAllByOwner_Empty(t *testing.T) {
	repo := setupTestRepo(t)

	tasks, err := repo.FindAllByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FindAllByOwner() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestRepository_Update_VersionGuard(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := newTestTask("user-1")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	task.StatusID = "done"
	task.UpdatedAt = time.Now()
	if err := repo.Update(ctx, task, 0); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if task.Version != 1 {
		t.Errorf("Version = %d, want 1", task.Version)
	}

	// A writer still holding version 0 must be rejected.
	stale := newTestTask("user-1")
	stale.ID = task.ID
	stale.StatusID = "in_progress"
	stale.UpdatedAt = time.Now()
	if err := repo.Update(ctx, stale, 0); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for stale version, got %v", err)
	}

	found, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.StatusID != "done" {
		t.Errorf("StatusID = %q, want %q after rejected stale write", found.StatusID, "done")
	}
}

func TestRepository_Update_ReReadFailureIsNotConflict(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := newTestTask("user-1")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Bump the version so the guarded update misses, and break the tags
	// column so the follow-up read fails. A broken store must surface as
	// an error, not masquerade as a concurrent-write conflict.
	if err := repo.db.Exec("UPDATE tasks SET version = 5, tags = 'not-json' WHERE id = ?", task.ID).Error; err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	task.StatusID = "done"
	task.UpdatedAt = time.Now()
	err := repo.Update(ctx, task, 0)
	if err == nil {
		t.Fatal("expected error from broken re-read")
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Errorf("store failure reported as ErrConflict: %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Errorf("store failure reported as ErrNotFound: %v", err)
	}
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	ghost := newTestTask("user-1")
	if err := repo.Update(context.Background(), ghost, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := newTestTask("user-1")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Hard delete: the row is gone, not tombstoned.
	if _, err := repo.FindByID(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Second delete fails NotFound.
	if err := repo.Delete(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
