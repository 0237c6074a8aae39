package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/example/taskboard/domain/task"
	userdomain "github.com/example/taskboard/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrTitleRequired is returned when a task is created without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrTitleTooLong is returned when a title exceeds the length limit.
	ErrTitleTooLong = errors.New("title must be at most 255 characters")
	// ErrDescriptionTooLong is returned when a description exceeds the limit.
	ErrDescriptionTooLong = errors.New("description must be at most 2000 characters")
	// ErrInvalidStatus is returned for an unknown task status.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority is returned for an unknown task priority.
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrDueDateInPast is returned when a task is created with a due date
	// that has already passed.
	ErrDueDateInPast = errors.New("due date must be in the future")
)

// UserDirectory resolves user identifiers. Satisfied by the auth adapter.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// NotificationSink receives notification decisions made by the service.
// Delivery is fire-and-forget; implementations must not block mutations.
type NotificationSink interface {
	TaskAssigned(ctx context.Context, task *domain.Task, assigneeID, assignedBy string)
	TaskUpdated(ctx context.Context, task *domain.Task, assigneeID string)
}

// TaskService handles task business logic, authorization, and the
// notification side effects of successful mutations.
type TaskService struct {
	repo  *TaskRepository
	store DocumentStore
	users UserDirectory
	sink  NotificationSink
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *TaskRepository, store DocumentStore, users UserDirectory, sink NotificationSink) *TaskService {
	return &TaskService{
		repo:  repo,
		store: store,
		users: users,
		sink:  sink,
		now:   time.Now,
	}
}

// Create creates a task on behalf of the requesting principal. CreatedBy is
// always the caller, regardless of the request payload.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	// Limits are in characters, not bytes
	if utf8.RuneCountInString(req.Title) > domain.MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(req.Description) > domain.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	status := domain.StatusPending
	if req.Status != "" {
		status = domain.TaskStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.TaskPriority(req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidPriority
		}
	}

	now := s.now()
	if req.DueDate != nil && !req.DueDate.After(now) {
		return nil, ErrDueDateInPast
	}

	if req.AssignedTo != "" {
		if err := s.resolveAssignee(ctx, req.AssignedTo); err != nil {
			return nil, err
		}
	}

	if err := CheckAttach(0, req.Documents); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedBy:   req.Principal.ID,
		AssignedTo:  req.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	docs, err := s.storeAttachments(ctx, task.ID, req.Principal.ID, req.Documents)
	if err != nil {
		return nil, err
	}
	task.Documents = docs

	if ShouldNotifyAssigned(req.Principal.ID, "", task.AssignedTo) {
		s.sink.TaskAssigned(ctx, task, task.AssignedTo, req.Principal.ID)
	}

	return task, nil
}

// Get retrieves a task visible to the principal.
func (s *TaskService) Get(_ context.Context, p userdomain.Principal, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !CanView(p, task) {
		return nil, domain.ErrAccessDenied
	}
	return task, nil
}

// List returns a page of tasks visible to the principal.
func (s *TaskService) List(_ context.Context, req ListTasksRequest) ([]*domain.Task, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := TaskFilter{
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
	}
	return s.repo.FindPage(req.Principal, filter, page, limit)
}

// Update applies a partial update to a task. Absent fields are left
// unchanged; Clear flags reset their field.
func (s *TaskService) Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindByID(req.TaskID)
	if err != nil {
		return nil, err
	}
	if !CanUpdate(req.Principal, task) {
		return nil, domain.ErrAccessDenied
	}

	prevAssignee := task.AssignedTo

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		if utf8.RuneCountInString(*req.Title) > domain.MaxTitleLength {
			return nil, ErrTitleTooLong
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > domain.MaxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		task.Description = *req.Description
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = priority
	}
	if req.ClearDueDate {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ClearAssignee {
		task.AssignedTo = ""
	} else if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			task.AssignedTo = ""
		} else {
			if err := s.resolveAssignee(ctx, *req.AssignedTo); err != nil {
				return nil, err
			}
			task.AssignedTo = *req.AssignedTo
		}
	}

	if err := CheckAttach(len(task.Documents), req.Documents); err != nil {
		return nil, err
	}

	task.UpdatedAt = s.now()
	if err := s.repo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	docs, err := s.storeAttachments(ctx, task.ID, req.Principal.ID, req.Documents)
	if err != nil {
		return nil, err
	}
	task.Documents = append(task.Documents, docs...)

	if ShouldNotifyAssigned(req.Principal.ID, prevAssignee, task.AssignedTo) {
		s.sink.TaskAssigned(ctx, task, task.AssignedTo, req.Principal.ID)
	}
	if ShouldNotifyUpdated(task.AssignedTo) {
		s.sink.TaskUpdated(ctx, task, task.AssignedTo)
	}

	return task, nil
}

// Delete removes a task and its documents. Document metadata is removed
// first; blob removal is best effort and never reverts the deletion.
func (s *TaskService) Delete(ctx context.Context, p userdomain.Principal, taskID string) error {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}
	if !CanDelete(p, task) {
		return domain.ErrAccessDenied
	}

	docs, err := s.repo.Delete(taskID)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			log.Printf("[task] Failed to remove blob %s: %v", doc.StoragePath, err)
		}
	}

	return nil
}

// DownloadDocument returns a document's metadata and content. A document
// record whose blob is gone yields ErrContentMissing, not ErrDocumentNotFound.
func (s *TaskService) DownloadDocument(ctx context.Context, p userdomain.Principal, taskID, documentID string) (*domain.Document, []byte, error) {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if !CanView(p, task) {
		return nil, nil, domain.ErrAccessDenied
	}

	doc, err := s.repo.FindDocument(taskID, documentID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	return doc, data, nil
}

// RemoveDocument detaches a single document from a task.
func (s *TaskService) RemoveDocument(ctx context.Context, p userdomain.Principal, taskID, documentID string) error {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}

	doc, err := s.repo.FindDocument(taskID, documentID)
	if err != nil {
		return err
	}

	if !CanRemoveDocument(p, task, doc) {
		return domain.ErrAccessDenied
	}

	if err := s.repo.DeleteDocument(taskID, documentID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		log.Printf("[task] Failed to remove blob %s: %v", doc.StoragePath, err)
	}

	return nil
}

// resolveAssignee checks that an assignee identifier references a real user.
func (s *TaskService) resolveAssignee(ctx context.Context, userID string) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve assignee: %w", err)
	}
	if !exists {
		return domain.ErrInvalidReference
	}
	return nil
}

// storeAttachments persists uploaded blobs and their metadata records.
// Uploads are validated before the task mutation, so failures here are
// storage errors, not policy rejections.
func (s *TaskService) storeAttachments(ctx context.Context, taskID, uploaderID string, uploads []AttachmentUpload) ([]domain.Document, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, len(uploads))
	for _, u := range uploads {
		docID := uuid.New().String()
		name := sanitizeFilename(u.Filename)
		path := fmt.Sprintf("%s/%s/%s", taskID, docID, name)

		if err := s.store.Put(ctx, path, u.Data, u.ContentType); err != nil {
			// Roll back blobs already written for this batch
			for _, d := range docs {
				if derr := s.store.Delete(ctx, d.StoragePath); derr != nil {
					log.Printf("[task] Failed to remove blob %s: %v", d.StoragePath, derr)
				}
			}
			return nil, fmt.Errorf("failed to store document: %w", err)
		}

		docs = append(docs, domain.Document{
			ID:           docID,
			TaskID:       taskID,
			StoredName:   name,
			OriginalName: u.Filename,
			StoragePath:  path,
			Size:         int64(len(u.Data)),
			ContentType:  u.ContentType,
			UploadedBy:   uploaderID,
			CreatedAt:    s.now(),
		})
	}

	if err := s.repo.AddDocuments(docs); err != nil {
		return nil, fmt.Errorf("failed to save documents: %w", err)
	}
	return docs, nil
}

// sanitizeFilename strips path components and separators from an uploaded
// filename so it is safe to embed in a storage path.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "." || name == ".." || name == "" {
		return "document.pdf"
	}
	return name
}
