package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/devtracker/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module.
type APIModule struct {
	app               *fiber.App
	authContainer     mono.ServiceContainer
	taskContainer     mono.ServiceContainer
	metadataContainer mono.ServiceContainer
	settingsContainer mono.ServiceContainer
	authAdapter       auth.AuthPort
	listenAddr        string
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	addr := os.Getenv("DEVTRACKER_HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return &APIModule{
		listenAddr: addr,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "metadata", "settings"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskContainer = container
	case "metadata":
		m.metadataContainer = container
	case "settings":
		m.settingsContainer = container
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil || m.taskContainer == nil ||
		m.metadataContainer == nil || m.settingsContainer == nil {
		return fmt.Errorf("module dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	// Setup routes
	m.setupRoutes()

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(m.listenAddr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.listenAddr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.listenAddr,
		},
	}
}

// setupRoutes wires the HTTP surface.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(m.authContainer, m.taskContainer, m.metadataContainer, m.settingsContainer, m.authAdapter)
	protected := AuthMiddleware(m.authAdapter)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(successResponse("ok", nil))
	})

	v1 := m.app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/signup", handlers.Signup)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/refresh", handlers.Refresh)
	authGroup.Get("/validate", protected, handlers.Validate)
	authGroup.Patch("/profile", protected, handlers.UpdateProfile)

	metadataGroup := v1.Group("/metadata")
	metadataGroup.Get("/statuses", handlers.ListStatuses)
	metadataGroup.Get("/priorities", handlers.ListPriorities)

	settingsGroup := v1.Group("/settings", protected)
	settingsGroup.Get("/", handlers.GetSettings)
	settingsGroup.Patch("/", handlers.UpdateSettings)

	tasks := v1.Group("/tasks", protected)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/", handlers.ListTasks)
	tasks.Get("/:taskId", handlers.GetTask)
	tasks.Patch("/:taskId/status", handlers.UpdateTaskStatus)
	tasks.Patch("/:taskId", handlers.UpdateTask)
	tasks.Delete("/:taskId", handlers.DeleteTask)
}
