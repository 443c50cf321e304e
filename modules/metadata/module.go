package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// MetadataModule provides the status/priority reference catalog.
type MetadataModule struct {
	registry        *Registry
	catalogPath     string
	initialStatusID string
}

// Compile-time interface checks.
var _ mono.Module = (*MetadataModule)(nil)
var _ mono.ServiceProviderModule = (*MetadataModule)(nil)
var _ mono.HealthCheckableModule = (*MetadataModule)(nil)

// NewModule creates a new MetadataModule. The catalog is loaded from
// DEVTRACKER_METADATA_PATH when set, otherwise the built-in defaults
// are used. DEVTRACKER_INITIAL_STATUS overrides the default status for
// new tasks.
func NewModule() *MetadataModule {
	initial := os.Getenv("DEVTRACKER_INITIAL_STATUS")
	if initial == "" {
		initial = "todo"
	}
	return &MetadataModule{
		catalogPath:     os.Getenv("DEVTRACKER_METADATA_PATH"),
		initialStatusID: initial,
	}
}

// Name returns the module name.
func (m *MetadataModule) Name() string {
	return "metadata"
}

// Start loads the catalog and builds the immutable registry. Changes to
// the catalog file require a restart.
func (m *MetadataModule) Start(_ context.Context) error {
	catalog := DefaultCatalog()
	if m.catalogPath != "" {
		loaded, err := LoadCatalogFile(m.catalogPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		catalog = loaded
	}

	registry, err := NewRegistry(catalog, m.initialStatusID)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}
	m.registry = registry

	log.Printf("[metadata] Module started (%d statuses, %d priorities, initial %q)",
		len(registry.Statuses()), len(registry.Priorities()), m.initialStatusID)
	return nil
}

// Stop shuts down the module.
func (m *MetadataModule) Stop(_ context.Context) error {
	log.Println("[metadata] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *MetadataModule) Health(_ context.Context) mono.HealthStatus {
	if m.registry == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "registry not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"statuses":   len(m.registry.Statuses()),
			"priorities": len(m.registry.Priorities()),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *MetadataModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-statuses", json.Unmarshal, json.Marshal, m.handleListStatuses,
	); err != nil {
		return fmt.Errorf("failed to register list-statuses service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-priorities", json.Unmarshal, json.Marshal, m.handleListPriorities,
	); err != nil {
		return fmt.Errorf("failed to register list-priorities service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "catalog", json.Unmarshal, json.Marshal, m.handleCatalog,
	); err != nil {
		return fmt.Errorf("failed to register catalog service: %w", err)
	}

	log.Printf("[metadata] Registered services: list-statuses, list-priorities, catalog")
	return nil
}

// handleListStatuses returns the ordered status catalog.
func (m *MetadataModule) handleListStatuses(_ context.Context, _ ListStatusesRequest, _ *mono.Msg) (ListStatusesResponse, error) {
	return ListStatusesResponse{Statuses: m.registry.Statuses()}, nil
}

// handleListPriorities returns the ordered priority catalog.
func (m *MetadataModule) handleListPriorities(_ context.Context, _ ListPrioritiesRequest, _ *mono.Msg) (ListPrioritiesResponse, error) {
	return ListPrioritiesResponse{Priorities: m.registry.Priorities()}, nil
}

// handleCatalog returns the full catalog snapshot.
func (m *MetadataModule) handleCatalog(_ context.Context, _ CatalogRequest, _ *mono.Msg) (CatalogResponse, error) {
	return CatalogResponse{
		Statuses:        m.registry.Statuses(),
		Priorities:      m.registry.Priorities(),
		InitialStatusID: m.registry.InitialStatus().ID,
	}, nil
}
