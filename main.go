package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/devtracker/modules/api"
	"github.com/example/devtracker/modules/auth"
	"github.com/example/devtracker/modules/cache"
	"github.com/example/devtracker/modules/metadata"
	"github.com/example/devtracker/modules/settings"
	"github.com/example/devtracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== DevTracker API ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	taskModule := task.NewModule()

	// The task-list cache is optional: without a Redis address the
	// task module serves straight from the database.
	if redisAddr := os.Getenv("DEVTRACKER_REDIS_ADDR"); redisAddr != "" {
		cacheModule := cache.NewModule(redisAddr)
		app.Register(cacheModule)
		taskModule.SetCache(cacheModule)
	}

	// Register modules with the framework.
	// Order: independent modules first, then dependent modules.
	app.Register(metadata.NewModule())
	app.Register(auth.NewModule())
	app.Register(settings.NewModule())
	app.Register(taskModule)
	app.Register(api.NewModule())

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/signup          - Create an account")
	log.Println("  POST   /api/v1/auth/login           - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh         - Refresh access token")
	log.Println("  GET    /api/v1/metadata/statuses    - Status catalog")
	log.Println("  GET    /api/v1/metadata/priorities  - Priority catalog")
	log.Println("  GET    /health                      - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/auth/validate          - Current user")
	log.Println("  PATCH  /api/v1/auth/profile           - Edit name/email")
	log.Println("  GET    /api/v1/settings               - Preferences")
	log.Println("  PATCH  /api/v1/settings               - Edit preferences")
	log.Println("  POST   /api/v1/tasks                  - Create task")
	log.Println("  GET    /api/v1/tasks                  - List tasks (newest first)")
	log.Println("  GET    /api/v1/tasks/:taskId          - Get task")
	log.Println("  PATCH  /api/v1/tasks/:taskId          - Edit task")
	log.Println("  PATCH  /api/v1/tasks/:taskId/status   - Change task status")
	log.Println("  DELETE /api/v1/tasks/:taskId          - Delete task")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
