package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/devtracker/domain/task"
	"github.com/example/devtracker/modules/metadata"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ListCache is the subset of the cache module the service needs for
// per-user task lists. A nil ListCache disables caching.
type ListCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service is the task lifecycle core. Every operation takes the userID
// resolved by the auth guard; ownership is checked before any mutation,
// in every mutating operation, even when a caller claims to have
// checked already.
type Service struct {
	repo     *Repository
	registry metadata.Port
	cache    ListCache
	group    singleflight.Group
}

// NewService creates a new task Service. cache may be nil.
func NewService(repo *Repository, registry metadata.Port, cache ListCache) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		cache:    cache,
	}
}

// Create validates input against the registry and inserts a new task
// owned by userID. Priority is required; status defaults to the
// registry's initial status when omitted.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*View, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.NewValidationError("title", "is required")
	}

	if input.PriorityID == "" {
		return nil, domain.NewValidationError("priority_id", "is required")
	}
	priority, err := s.registry.ResolvePriority(input.PriorityID)
	if err != nil {
		return nil, domain.NewValidationError("priority_id", fmt.Sprintf("%q is not a known priority", input.PriorityID))
	}

	status := s.registry.InitialStatus()
	if input.StatusID != "" {
		status, err = s.registry.ResolveStatus(input.StatusID)
		if err != nil {
			return nil, domain.NewValidationError("status_id", fmt.Sprintf("%q is not a known status", input.StatusID))
		}
	}

	now := time.Now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		Title:       input.Title,
		Description: input.Description,
		StatusID:    status.ID,
		PriorityID:  priority.ID,
		DueDate:     input.DueDate,
		Tags:        domain.NormalizeTags(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.toView(t)
}

// ListByUser returns all tasks owned by userID, newest first. The store
// is only ever queried by the caller's own id. Cache-aside when a cache
// is wired; concurrent misses for the same user are collapsed.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]View, error) {
	if s.cache != nil {
		var cached []View
		hit, err := s.cache.Get(ctx, userID, &cached)
		if err != nil {
			log.Printf("[task] cache read failed for user %s: %v", userID, err)
		} else if hit {
			return cached, nil
		}
	}

	views, err, _ := s.group.Do(userID, func() (any, error) {
		// The leader's result is shared with every collapsed caller, so
		// the load must not die with the first caller's context.
		loadCtx := context.WithoutCancel(ctx)

		tasks, err := s.repo.FindAllByOwner(loadCtx, userID)
		if err != nil {
			return nil, err
		}

		views := make([]View, 0, len(tasks))
		for i := range tasks {
			view, err := s.toView(&tasks[i])
			if err != nil {
				return nil, err
			}
			views = append(views, *view)
		}

		if s.cache != nil {
			if err := s.cache.Set(loadCtx, userID, views); err != nil {
				log.Printf("[task] cache write failed for user %s: %v", userID, err)
			}
		}
		return views, nil
	})
	if err != nil {
		return nil, err
	}
	return views.([]View), nil
}

// Get returns a single task after the same ownership check as the
// mutating operations.
func (s *Service) Get(ctx context.Context, userID, taskID string) (*View, error) {
	t, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.toView(t)
}

// UpdateStatus moves a task to a new status. Any valid status may
// follow any other; there is no transition graph. Repeating the same
// status is a no-op that still succeeds.
func (s *Service) UpdateStatus(ctx context.Context, userID, taskID, statusID string) (*View, error) {
	if statusID == "" {
		return nil, domain.NewValidationError("status_id", "is required")
	}

	t, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	status, err := s.registry.ResolveStatus(statusID)
	if err != nil {
		return nil, domain.NewValidationError("status_id", fmt.Sprintf("%q is not a known status", statusID))
	}

	loadedVersion := t.Version
	t.StatusID = status.ID
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t, loadedVersion); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.toView(t)
}

// Update applies a partial edit. Provided fields are validated
// independently; nil fields are left unchanged.
func (s *Service) Update(ctx context.Context, userID, taskID string, patch UpdatePatch) (*View, error) {
	t, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, domain.NewValidationError("title", "cannot be empty")
		}
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.PriorityID != nil {
		priority, err := s.registry.ResolvePriority(*patch.PriorityID)
		if err != nil {
			return nil, domain.NewValidationError("priority_id", fmt.Sprintf("%q is not a known priority", *patch.PriorityID))
		}
		t.PriorityID = priority.ID
	}
	if patch.StatusID != nil {
		status, err := s.registry.ResolveStatus(*patch.StatusID)
		if err != nil {
			return nil, domain.NewValidationError("status_id", fmt.Sprintf("%q is not a known status", *patch.StatusID))
		}
		t.StatusID = status.ID
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.Tags != nil {
		t.Tags = domain.NormalizeTags(*patch.Tags)
	}

	loadedVersion := t.Version
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t, loadedVersion); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.toView(t)
}

// Delete removes a task permanently after the ownership check.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.loadOwned(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// loadOwned loads a task and verifies the caller owns it. The ownership
// check runs before any mutation to prevent cross-user tampering.
func (s *Service) loadOwned(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// invalidate drops the cached task list for userID. Cache failures
// degrade to the database and never fail the request.
func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("[task] cache invalidation failed for user %s: %v", userID, err)
	}
}

// toView resolves status and priority ids against the registry. A
// persisted task never holds a dangling reference, so a resolution
// failure here means the catalog shrank across a restart.
func (s *Service) toView(t *domain.Task) (*View, error) {
	status, err := s.registry.ResolveStatus(t.StatusID)
	if err != nil {
		return nil, fmt.Errorf("task %s references unknown status %q: %w", t.ID, t.StatusID, err)
	}
	priority, err := s.registry.ResolvePriority(t.PriorityID)
	if err != nil {
		return nil, fmt.Errorf("task %s references unknown priority %q: %w", t.ID, t.PriorityID, err)
	}

	return &View{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}
