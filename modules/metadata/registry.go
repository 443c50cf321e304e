package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrStatusNotFound is returned when a status id is not in the catalog.
	ErrStatusNotFound = errors.New("status not found")
	// ErrPriorityNotFound is returned when a priority id is not in the catalog.
	ErrPriorityNotFound = errors.New("priority not found")
)

// Status is a named task state from the fixed catalog.
type Status struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Priority is a named task priority from the fixed catalog.
type Priority struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Catalog is the raw reference data a Registry is built from.
type Catalog struct {
	Statuses   []Status   `json:"statuses"`
	Priorities []Priority `json:"priorities"`
}

// DefaultCatalog returns the built-in status and priority catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Statuses: []Status{
			{ID: "todo", Name: "Todo", SortOrder: 1},
			{ID: "in_progress", Name: "In Progress", SortOrder: 2},
			{ID: "done", Name: "Done", SortOrder: 3},
		},
		Priorities: []Priority{
			{ID: "low", Name: "Low", Weight: 1},
			{ID: "medium", Name: "Medium", Weight: 2},
			{ID: "high", Name: "High", Weight: 3},
		},
	}
}

// LoadCatalogFile reads a catalog from a JSON file.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return catalog, nil
}

// Registry is the immutable, in-memory catalog of valid statuses and
// priorities. It is built once at startup and safe for unsynchronized
// concurrent reads.
type Registry struct {
	statuses     []Status
	priorities   []Priority
	statusByID   map[string]Status
	priorityByID map[string]Priority
	initial      Status
}

// NewRegistry builds a Registry from a catalog and the designated
// initial status id. It fails when the catalog is empty, contains
// duplicate ids, or the initial status does not resolve.
func NewRegistry(catalog Catalog, initialStatusID string) (*Registry, error) {
	if len(catalog.Statuses) == 0 {
		return nil, errors.New("catalog must contain at least one status")
	}
	if len(catalog.Priorities) == 0 {
		return nil, errors.New("catalog must contain at least one priority")
	}

	statusByID := make(map[string]Status, len(catalog.Statuses))
	for _, s := range catalog.Statuses {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("status entry %+v must have id and name", s)
		}
		if _, ok := statusByID[s.ID]; ok {
			return nil, fmt.Errorf("duplicate status id %q", s.ID)
		}
		statusByID[s.ID] = s
	}

	priorityByID := make(map[string]Priority, len(catalog.Priorities))
	for _, p := range catalog.Priorities {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("priority entry %+v must have id and name", p)
		}
		if _, ok := priorityByID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate priority id %q", p.ID)
		}
		priorityByID[p.ID] = p
	}

	initial, ok := statusByID[initialStatusID]
	if !ok {
		return nil, fmt.Errorf("initial status %q is not in the catalog", initialStatusID)
	}

	return &Registry{
		statuses:     append([]Status(nil), catalog.Statuses...),
		priorities:   append([]Priority(nil), catalog.Priorities...),
		statusByID:   statusByID,
		priorityByID: priorityByID,
		initial:      initial,
	}, nil
}

// Statuses returns the ordered status catalog. Never empty.
func (r *Registry) Statuses() []Status {
	return r.statuses
}

// Priorities returns the ordered priority catalog. Never empty.
func (r *Registry) Priorities() []Priority {
	return r.priorities
}

// ResolveStatus looks up a status by id.
func (r *Registry) ResolveStatus(id string) (Status, error) {
	s, ok := r.statusByID[id]
	if !ok {
		return Status{}, ErrStatusNotFound
	}
	return s, nil
}

// ResolvePriority looks up a priority by id.
func (r *Registry) ResolvePriority(id string) (Priority, error) {
	p, ok := r.priorityByID[id]
	if !ok {
		return Priority{}, ErrPriorityNotFound
	}
	return p, nil
}

// InitialStatus returns the status new tasks default to.
func (r *Registry) InitialStatus() Status {
	return r.initial
}
