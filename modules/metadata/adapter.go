package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the read interface other modules use to validate status and
// priority references. The concrete Registry implements it directly.
type Port interface {
	Statuses() []Status
	Priorities() []Priority
	ResolveStatus(id string) (Status, error)
	ResolvePriority(id string) (Priority, error)
	InitialStatus() Status
}

var _ Port = (*Registry)(nil)

// Adapter fetches the catalog snapshot from the metadata module and
// rebuilds a local Registry. The catalog is immutable for the lifetime
// of the process, so a single fetch is sufficient.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

// Load fetches the catalog and builds a local Registry for O(1)
// resolution without further container round trips.
func (a *Adapter) Load(ctx context.Context) (*Registry, error) {
	req := CatalogRequest{}
	var resp CatalogResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"catalog",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}

	registry, err := NewRegistry(Catalog{
		Statuses:   resp.Statuses,
		Priorities: resp.Priorities,
	}, resp.InitialStatusID)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild registry from snapshot: %w", err)
	}
	return registry, nil
}
