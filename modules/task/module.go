package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/taskboard/events"
	"github.com/example/taskboard/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/taskboard/domain/task"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	db       *gorm.DB
	service  *TaskService
	store    *JetStreamDocumentStore
	authPort auth.AuthPort
	eventBus mono.EventBus
	dbPath   string
	natsURL  string
	bucket   string
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	dbPath := os.Getenv("TASKBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "taskboard.db"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "task-documents"
	}
	return &TaskModule{
		dbPath:  dbPath,
		natsURL: natsURL,
		bucket:  bucket,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.authPort = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskAssignedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
	}
}

// Start initializes persistence, blob storage, and the task service.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("authPort dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, notifications will not be published")
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}, &domain.Document{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := NewJetStreamDocumentStore(m.natsURL, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to create document store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return fmt.Errorf("failed to init document store: %w", err)
	}
	m.store = store

	repo := NewTaskRepository(db)
	sink := NewEventBusSink(m.eventBus)
	m.service = NewTaskService(repo, store, m.authPort, sink)

	log.Printf("[task] Module started (database: %s, bucket: %s)", m.dbPath, m.bucket)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.store != nil {
		m.store.Close()
	}
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil || m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "module not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	if !m.store.IsConnected() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "document store disconnected",
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"bucket":   m.bucket,
		},
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "download-document", json.Unmarshal, json.Marshal, m.downloadDocument,
	); err != nil {
		return fmt.Errorf("failed to register download-document service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "remove-document", json.Unmarshal, json.Marshal, m.removeDocument,
	); err != nil {
		return fmt.Errorf("failed to register remove-document service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, get-task, list-tasks, update-task, delete-task, download-document, remove-document")
	return nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (CreateTaskResponse, error) {
	task, err := m.service.Create(ctx, req)
	if err != nil {
		return CreateTaskResponse{}, err
	}
	return CreateTaskResponse{Task: newTaskView(task, time.Now())}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (GetTaskResponse, error) {
	task, err := m.service.Get(ctx, req.Principal, req.TaskID)
	if err != nil {
		return GetTaskResponse{}, err
	}
	return GetTaskResponse{Task: newTaskView(task, time.Now())}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 10
	}

	tasks, total, err := m.service.List(ctx, req)
	if err != nil {
		return ListTasksResponse{}, err
	}

	now := time.Now()
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t, now))
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return ListTasksResponse{
		Tasks: views,
		Pagination: Pagination{
			CurrentPage: req.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			HasNextPage: req.Page < totalPages,
			HasPrevPage: req.Page > 1,
		},
	}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (UpdateTaskResponse, error) {
	task, err := m.service.Update(ctx, req)
	if err != nil {
		return UpdateTaskResponse{}, err
	}
	return UpdateTaskResponse{Task: newTaskView(task, time.Now())}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.Principal, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) downloadDocument(ctx context.Context, req DownloadDocumentRequest, _ *mono.Msg) (DownloadDocumentResponse, error) {
	doc, data, err := m.service.DownloadDocument(ctx, req.Principal, req.TaskID, req.DocumentID)
	if err != nil {
		return DownloadDocumentResponse{}, err
	}
	return DownloadDocumentResponse{
		Filename:    doc.OriginalName,
		ContentType: doc.ContentType,
		Data:        data,
	}, nil
}

func (m *TaskModule) removeDocument(ctx context.Context, req RemoveDocumentRequest, _ *mono.Msg) (RemoveDocumentResponse, error) {
	if err := m.service.RemoveDocument(ctx, req.Principal, req.TaskID, req.DocumentID); err != nil {
		return RemoveDocumentResponse{}, err
	}
	return RemoveDocumentResponse{Removed: true}, nil
}
