package api

import (
	"encoding/json"
	"log"
	"strings"

	domain "github.com/example/devtracker/domain/user"
	"github.com/example/devtracker/modules/auth"
	"github.com/example/devtracker/modules/metadata"
	"github.com/example/devtracker/modules/settings"
	"github.com/example/devtracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer     mono.ServiceContainer
	taskContainer     mono.ServiceContainer
	metadataContainer mono.ServiceContainer
	settingsContainer mono.ServiceContainer
	authAdapter       auth.AuthPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer, taskContainer, metadataContainer, settingsContainer mono.ServiceContainer, authAdapter auth.AuthPort) *Handlers {
	return &Handlers{
		authContainer:     authContainer,
		taskContainer:     taskContainer,
		metadataContainer: metadataContainer,
		settingsContainer: settingsContainer,
		authAdapter:       authAdapter,
	}
}

// Signup handles user registration.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Email and password are required"))
	}

	authReq := auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		successResponse("Account created successfully", resp))
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Email and password are required"))
	}

	authReq := auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Logged in successfully", resp))
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Refresh token is required"))
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.RefreshToken,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			failureResponse("Invalid or expired refresh token"))
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Tokens refreshed successfully", resp))
}

// Validate returns the authenticated user for a valid bearer token.
// The dashboard calls this on load to restore its session.
func (h *Handlers) Validate(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(
			failureResponse("User not authenticated"))
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		log.Printf("[api] Failed to load user %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			failureResponse("Failed to retrieve user"))
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Token is valid", fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"created_at": user.CreatedAt,
		}))
}

// UpdateProfile changes the authenticated user's display name and email.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Email is required"))
	}

	authReq := auth.UpdateProfileRequest{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
	}
	var resp auth.UpdateProfileResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"update-profile",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Profile updated successfully", resp))
}

// GetSettings returns the authenticated user's preferences.
func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	req := settings.GetSettingsRequest{UserID: userID}
	var resp settings.SettingsResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.settingsContainer,
		"get",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return h.handleSettingsError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Settings retrieved successfully", resp.Settings))
}

// UpdateSettings applies a partial preferences edit.
func (h *Handlers) UpdateSettings(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	var patch settings.Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	req := settings.UpdateSettingsRequest{UserID: userID, Patch: patch}
	var resp settings.SettingsResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.settingsContainer,
		"update",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return h.handleSettingsError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Settings updated successfully", resp.Settings))
}

// ListStatuses returns the status catalog for selection UI.
func (h *Handlers) ListStatuses(c *fiber.Ctx) error {
	var resp metadata.ListStatusesResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.metadataContainer,
		"list-statuses",
		json.Marshal,
		json.Unmarshal,
		&metadata.ListStatusesRequest{},
		&resp,
	); err != nil {
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			failureResponse("An internal error occurred"))
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Statuses retrieved successfully", resp.Statuses))
}

// ListPriorities returns the priority catalog for selection UI.
func (h *Handlers) ListPriorities(c *fiber.Ctx) error {
	var resp metadata.ListPrioritiesResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.metadataContainer,
		"list-priorities",
		json.Marshal,
		json.Unmarshal,
		&metadata.ListPrioritiesRequest{},
		&resp,
	); err != nil {
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			failureResponse("An internal error occurred"))
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Priorities retrieved successfully", resp.Priorities))
}

// CreateTask creates a task owned by the authenticated user.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	var input task.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	taskReq := task.CreateTaskRequest{UserID: userID, Input: input}
	var resp task.View

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"create",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		successResponse("Task created successfully", resp))
}

// ListTasks returns all tasks of the authenticated user, newest first.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	taskReq := task.ListTasksRequest{UserID: userID}
	var resp task.ListTasksResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"list",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Tasks retrieved successfully", resp.Tasks))
}

// GetTask returns a single task of the authenticated user.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	taskReq := task.GetTaskRequest{UserID: userID, TaskID: c.Params("taskId")}
	var resp task.View

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"get",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Task retrieved successfully", resp))
}

// UpdateTaskStatus moves a task to a new status.
func (h *Handlers) UpdateTaskStatus(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	if req.StatusID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Status ID is required"))
	}

	taskReq := task.UpdateTaskStatusRequest{
		UserID:   userID,
		TaskID:   c.Params("taskId"),
		StatusID: req.StatusID,
	}
	var resp task.View

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"update-status",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Task status updated successfully", resp))
}

// UpdateTask applies a partial edit to a task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	var patch task.UpdatePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid request body"))
	}

	taskReq := task.UpdateTaskRequest{
		UserID: userID,
		TaskID: c.Params("taskId"),
		Patch:  patch,
	}
	var resp task.View

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"update",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Task updated successfully", resp))
}

// DeleteTask removes a task permanently.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	userID, err := h.currentUserID(c)
	if err != nil {
		return err
	}

	taskReq := task.DeleteTaskRequest{UserID: userID, TaskID: c.Params("taskId")}
	var resp task.DeleteTaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.taskContainer,
		"delete",
		json.Marshal,
		json.Unmarshal,
		&taskReq,
		&resp,
	); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(
		successResponse("Task deleted successfully", resp))
}

// currentUserID extracts the authenticated user id set by the middleware.
func (h *Handlers) currentUserID(c *fiber.Ctx) (string, error) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return "", c.Status(fiber.StatusUnauthorized).JSON(
			failureResponse("User not authenticated"))
	}
	return claims.UserID, nil
}

// handleAuthError maps auth service failures to responses without
// exposing internals. Errors cross the service container as strings,
// so matching is by message.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(
			failureResponse("Invalid email or password"))
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(
			failureResponse("User with this email already exists"))
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Invalid email format"))
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Password must be at least 8 characters"))
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Password must be at most 72 characters"))
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(
			failureResponse("User not found"))
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			failureResponse("An internal error occurred"))
	}
}

// handleTaskError maps task service failures onto the error taxonomy:
// validation 400, not owner 403, missing 404, concurrent write 409,
// anything else 500 logged and masked.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "validation failed"):
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse(trimServiceError(errStr)))
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(
			failureResponse("Task not found"))
	case strings.Contains(errStr, "not the task owner"):
		return c.Status(fiber.StatusForbidden).JSON(
			failureResponse("You do not have access to this task"))
	case strings.Contains(errStr, "modified by another request"):
		return c.Status(fiber.StatusConflict).JSON(
			failureResponse("Task was modified by another request"))
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			failureResponse("An internal error occurred"))
	}
}

// handleSettingsError maps settings service failures: a bad theme is
// the caller's fault, everything else is masked.
func (h *Handlers) handleSettingsError(c *fiber.Ctx, err error) error {
	if strings.Contains(err.Error(), "unknown theme") {
		return c.Status(fiber.StatusBadRequest).JSON(
			failureResponse("Unknown theme"))
	}

	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(
		failureResponse("An internal error occurred"))
}

// trimServiceError strips container transport prefixes so only the
// service's own message reaches the client.
func trimServiceError(errStr string) string {
	if idx := strings.Index(errStr, "validation failed"); idx >= 0 {
		return errStr[idx:]
	}
	return errStr
}
