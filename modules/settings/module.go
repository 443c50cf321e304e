package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SettingsModule provides per-account preference services.
type SettingsModule struct {
	db      *gorm.DB
	service *Service
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*SettingsModule)(nil)
var _ mono.ServiceProviderModule = (*SettingsModule)(nil)
var _ mono.HealthCheckableModule = (*SettingsModule)(nil)

// NewModule creates a new SettingsModule.
func NewModule() *SettingsModule {
	dbPath := os.Getenv("DEVTRACKER_DB_PATH")
	if dbPath == "" {
		dbPath = "devtracker.db"
	}
	return &SettingsModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *SettingsModule) Name() string {
	return "settings"
}

// Start opens the database and builds the preferences service.
func (m *SettingsModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return err
	}
	m.service = NewService(repo)

	log.Printf("[settings] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *SettingsModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[settings] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *SettingsModule) Health(ctx context.Context) mono.HealthStatus {
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
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *SettingsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	log.Printf("[settings] Registered services: get, update")
	return nil
}

// handleGet handles the settings.get service request.
func (m *SettingsModule) handleGet(ctx context.Context, req GetSettingsRequest, _ *mono.Msg) (SettingsResponse, error) {
	s, err := m.service.Get(ctx, req.UserID)
	if err != nil {
		return SettingsResponse{}, err
	}
	return SettingsResponse{Settings: *s}, nil
}

// handleUpdate handles the settings.update service request.
func (m *SettingsModule) handleUpdate(ctx context.Context, req UpdateSettingsRequest, _ *mono.Msg) (SettingsResponse, error) {
	s, err := m.service.Update(ctx, req.UserID, req.Patch)
	if err != nil {
		return SettingsResponse{}, err
	}
	return SettingsResponse{Settings: *s}, nil
}
