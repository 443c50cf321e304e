package task

import (
	"time"

	domain "github.com/example/devtracker/domain/task"
	"github.com/example/devtracker/modules/metadata"
)

// View is a task as consumed by the dashboard: status and priority are
// resolved to their catalog entries instead of bare ids.
type View struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      metadata.Status   `json:"status"`
	Priority    metadata.Priority `json:"priority"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Tags        domain.TagSet     `json:"tags"`
	Version     int64             `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CreateInput carries the fields a caller may set at creation.
// PriorityID is required; StatusID defaults to the registry's initial
// status when empty.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PriorityID  string     `json:"priority_id"`
	StatusID    string     `json:"status_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdatePatch carries a partial edit. Nil fields are left unchanged.
type UpdatePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	PriorityID  *string    `json:"priority_id,omitempty"`
	StatusID    *string    `json:"status_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

// CreateTaskRequest is the container request for creating a task.
// UserID is the authenticated owner resolved by the auth middleware.
type CreateTaskRequest struct {
	UserID string      `json:"user_id"`
	Input  CreateInput `json:"input"`
}

// ListTasksRequest is the container request for listing the caller's tasks.
type ListTasksRequest struct {
	UserID string `json:"user_id"`
}

// ListTasksResponse is the container response with the caller's tasks,
// newest first.
type ListTasksResponse struct {
	Tasks []View `json:"tasks"`
	Total int    `json:"total"`
}

// GetTaskRequest is the container request for reading a single task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateTaskStatusRequest is the container request for the status-only update.
type UpdateTaskStatusRequest struct {
	UserID   string `json:"user_id"`
	TaskID   string `json:"task_id"`
	StatusID string `json:"status_id"`
}

// UpdateTaskRequest is the container request for a partial edit.
type UpdateTaskRequest struct {
	UserID string      `json:"user_id"`
	TaskID string      `json:"task_id"`
	Patch  UpdatePatch `json:"patch"`
}

// DeleteTaskRequest is the container request for deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse is the container response after a delete.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
