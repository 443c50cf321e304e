package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistry_Defaults(t *testing.T) {
	registry, err := NewRegistry(DefaultCatalog(), "todo")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if len(registry.Statuses()) != 3 {
		t.Errorf("len(Statuses()) = %d, want 3", len(registry.Statuses()))
	}
	if len(registry.Priorities()) != 3 {
		t.Errorf("len(Priorities()) = %d, want 3", len(registry.Priorities()))
	}

	initial := registry.InitialStatus()
	if initial.ID != "todo" {
		t.Errorf("InitialStatus().ID = %q, want %q", initial.ID, "todo")
	}
	if initial.Name != "Todo" {
		t.Errorf("InitialStatus().Name = %q, want %q", initial.Name, "Todo")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	defaults := DefaultCatalog()

	tests := []struct {
		name    string
		catalog Catalog
		initial string
	}{
		{
			name:    "empty statuses",
			catalog: Catalog{Priorities: defaults.Priorities},
			initial: "todo",
		},
		{
			name:    "empty priorities",
			catalog: Catalog{Statuses: defaults.Statuses},
			initial: "todo",
		},
		{
			name: "duplicate status id",
			catalog: Catalog{
				Statuses: []Status{
					{ID: "todo", Name: "Todo"},
					{ID: "todo", Name: "Todo Again"},
				},
				Priorities: defaults.Priorities,
			},
			initial: "todo",
		},
		{
			name: "status without name",
			catalog: Catalog{
				Statuses:   []Status{{ID: "todo"}},
				Priorities: defaults.Priorities,
			},
			initial: "todo",
		},
		{
			name:    "initial status not in catalog",
			catalog: defaults,
			initial: "archived",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.catalog, tt.initial); err == nil {
				t.Error("NewRegistry() should return error")
			}
		})
	}
}

func TestRegistry_ResolveStatus(t *testing.T) {
	registry, err := NewRegistry(DefaultCatalog(), "todo")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	status, err := registry.ResolveStatus("in_progress")
	if err != nil {
		t.Fatalf("ResolveStatus() error = %v", err)
	}
	if status.Name != "In Progress" {
		t.Errorf("status.Name = %q, want %q", status.Name, "In Progress")
	}

	if _, err := registry.ResolveStatus("archived"); !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("expected ErrStatusNotFound, got %v", err)
	}
	if _, err := registry.ResolveStatus(""); !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("expected ErrStatusNotFound for empty id, got %v", err)
	}
}

func TestRegistry_ResolvePriority(t *testing.T) {
	registry, err := NewRegistry(DefaultCatalog(), "todo")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	priority, err := registry.ResolvePriority("high")
	if err != nil {
		t.Fatalf("ResolvePriority() error = %v", err)
	}
	if priority.Name != "High" {
		t.Errorf("priority.Name = %q, want %q", priority.Name, "High")
	}

	if _, err := registry.ResolvePriority("urgent"); !errors.Is(err, ErrPriorityNotFound) {
		t.Errorf("expected ErrPriorityNotFound, got %v", err)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	content := `{
		"statuses": [
			{"id": "backlog", "name": "Backlog", "sort_order": 1},
			{"id": "doing", "name": "Doing", "sort_order": 2}
		],
		"priorities": [
			{"id": "p1", "name": "P1", "weight": 1}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}

	if len(catalog.Statuses) != 2 {
		t.Errorf("len(Statuses) = %d, want 2", len(catalog.Statuses))
	}
	if catalog.Statuses[0].ID != "backlog" {
		t.Errorf("Statuses[0].ID = %q, want %q", catalog.Statuses[0].ID, "backlog")
	}
	if len(catalog.Priorities) != 1 {
		t.Errorf("len(Priorities) = %d, want 1", len(catalog.Priorities))
	}

	registry, err := NewRegistry(catalog, "backlog")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if registry.InitialStatus().Name != "Backlog" {
		t.Errorf("InitialStatus().Name = %q, want %q", registry.InitialStatus().Name, "Backlog")
	}
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadCatalogFile() should fail for a missing file")
	}
}
