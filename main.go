package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/notify"
	"github.com/example/taskboard/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Taskboard - task management with real-time notifications ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	authModule := auth.NewModule()
	taskModule := task.NewModule()
	notifyModule := notify.NewModule()
	apiModule := api.NewModule()

	// Inject the notification hub into the API module
	// (This is done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(notifyModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - auth: accounts, tokens, user directory (ServiceProviderModule)
	// - notify: event consumer feeding the WebSocket hub
	// - task: core domain (depends on auth, emits notification events)
	// - api: driving adapter (Fiber HTTP/WebSocket server)
	app.Register(authModule)
	app.Register(notifyModule)
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

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
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Persistence: GORM + SQLite")
	log.Println("  - Document blobs: NATS JetStream Object Store")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Println("Notification flow:")
	log.Println("  - TaskAssigned events -> notify module -> assignee's sockets")
	log.Println("  - TaskUpdated events  -> notify module -> assignee's sockets")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                                   - Health check")
	log.Println("  POST   /api/v1/auth/register                     - Register")
	log.Println("  POST   /api/v1/auth/login                        - Login")
	log.Println("  POST   /api/v1/auth/refresh                      - Refresh tokens")
	log.Println("  GET    /api/v1/users                             - List users")
	log.Println("  DELETE /api/v1/users/:id                         - Delete user (admin)")
	log.Println("  GET    /api/v1/tasks                             - List tasks")
	log.Println("  POST   /api/v1/tasks                             - Create task (multipart)")
	log.Println("  GET    /api/v1/tasks/:id                         - Get task")
	log.Println("  PUT    /api/v1/tasks/:id                         - Update task (multipart)")
	log.Println("  DELETE /api/v1/tasks/:id                         - Delete task")
	log.Println("  GET    /api/v1/tasks/:id/documents/:docId/download - Download document")
	log.Println("  DELETE /api/v1/tasks/:id/documents/:docId        - Remove document")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Connect with: ws://localhost:3000/ws?token=<access token>")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
