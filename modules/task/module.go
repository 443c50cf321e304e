package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/example/devtracker/modules/cache"
	"github.com/example/devtracker/modules/metadata"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule provides the task lifecycle services.
type TaskModule struct {
	db                *gorm.DB
	repo              *Repository
	service           *Service
	cacheModule       *cache.Module
	metadataContainer mono.ServiceContainer
	dbPath            string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	dbPath := os.Getenv("DEVTRACKER_DB_PATH")
	if dbPath == "" {
		dbPath = "devtracker.db"
	}
	return &TaskModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Dependencies returns the list of module dependencies.
func (m *TaskModule) Dependencies() []string {
	return []string{"metadata"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "metadata" {
		m.metadataContainer = container
	}
}

// SetCache wires the optional Redis task-list cache. Called from main
// before the application starts; the module runs uncached without it.
// The cache module starts before this module, so its cache instance is
// resolved lazily in Start.
func (m *TaskModule) SetCache(c *cache.Module) {
	m.cacheModule = c
}

// Start opens the database, loads the metadata registry snapshot and
// builds the lifecycle service.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.metadataContainer == nil {
		return fmt.Errorf("metadata dependency not set")
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = NewRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return err
	}

	// The catalog is immutable per process, one snapshot is enough.
	registry, err := metadata.NewAdapter(m.metadataContainer).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load metadata registry: %w", err)
	}

	var listCache ListCache
	if m.cacheModule != nil && m.cacheModule.Cache() != nil {
		listCache = m.cacheModule.Cache()
	}
	m.service = NewService(m.repo, registry, listCache)

	log.Printf("[task] Module started (database: %s, cached: %t)", m.dbPath, listCache != nil)
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"cached":   m.cacheModule != nil,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-status", json.Unmarshal, json.Marshal, m.handleUpdateStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[task] Registered services: create, list, get, update-status, update, delete")
	return nil
}

// handleCreate handles the task.create service request.
func (m *TaskModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (View, error) {
	view, err := m.service.Create(ctx, req.UserID, req.Input)
	if err != nil {
		return View{}, err
	}
	return *view, nil
}

// handleList handles the task.list service request.
func (m *TaskModule) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	views, err := m.service.ListByUser(ctx, req.UserID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: views, Total: len(views)}, nil
}

// handleGet handles the task.get service request.
func (m *TaskModule) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (View, error) {
	view, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return View{}, err
	}
	return *view, nil
}

// handleUpdateStatus handles the task.update-status service request.
func (m *TaskModule) handleUpdateStatus(ctx context.Context, req UpdateTaskStatusRequest, _ *mono.Msg) (View, error) {
	view, err := m.service.UpdateStatus(ctx, req.UserID, req.TaskID, req.StatusID)
	if err != nil {
		return View{}, err
	}
	return *view, nil
}

// handleUpdate handles the task.update service request.
func (m *TaskModule) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (View, error) {
	view, err := m.service.Update(ctx, req.UserID, req.TaskID, req.Patch)
	if err != nil {
		return View{}, err
	}
	return *view, nil
}

// handleDelete handles the task.delete service request.
func (m *TaskModule) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.TaskID}, err
	}
	return DeleteTaskResponse{Deleted: true, ID: req.TaskID}, nil
}
