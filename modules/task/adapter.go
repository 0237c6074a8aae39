package task

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the interface for task operations exposed to other
// modules. Service errors carry the policy decision and are surfaced
// unwrapped so callers can map them to transport codes.
type TaskPort interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)
	GetTask(ctx context.Context, req GetTaskRequest) (*GetTaskResponse, error)
	ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*UpdateTaskResponse, error)
	DeleteTask(ctx context.Context, req DeleteTaskRequest) (*DeleteTaskResponse, error)
	DownloadDocument(ctx context.Context, req DownloadDocumentRequest) (*DownloadDocumentResponse, error)
	RemoveDocument(ctx context.Context, req RemoveDocumentRequest) (*RemoveDocumentResponse, error)
}

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{
		container: container,
	}
}

func (a *TaskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error) {
	var resp CreateTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) GetTask(ctx context.Context, req GetTaskRequest) (*GetTaskResponse, error) {
	var resp GetTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*UpdateTaskResponse, error) {
	var resp UpdateTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) DeleteTask(ctx context.Context, req DeleteTaskRequest) (*DeleteTaskResponse, error) {
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) DownloadDocument(ctx context.Context, req DownloadDocumentRequest) (*DownloadDocumentResponse, error) {
	var resp DownloadDocumentResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "download-document", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *TaskAdapter) RemoveDocument(ctx context.Context, req RemoveDocumentRequest) (*RemoveDocumentResponse, error) {
	var resp RemoveDocumentResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "remove-document", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}
