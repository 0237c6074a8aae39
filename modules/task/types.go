package task

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
	userdomain "github.com/example/taskboard/domain/user"
)

// AttachmentUpload carries one uploaded file across the service boundary.
// Data is base64-encoded on the wire by the JSON codec.
type AttachmentUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// DocumentView is the external representation of an attached document.
type DocumentView struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskView is the external representation of a task.
type TaskView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Overdue     bool           `json:"overdue"`
	CreatedBy   string         `json:"created_by"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	Documents   []DocumentView `json:"documents"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Pagination describes the page window of a listing response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Principal   userdomain.Principal `json:"principal"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status,omitempty"`
	Priority    string               `json:"priority,omitempty"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	AssignedTo  string               `json:"assigned_to,omitempty"`
	Documents   []AttachmentUpload   `json:"documents,omitempty"`
}

// CreateTaskResponse represents a task creation response.
type CreateTaskResponse struct {
	Task TaskView `json:"task"`
}

// GetTaskRequest represents a single task read request.
type GetTaskRequest struct {
	Principal userdomain.Principal `json:"principal"`
	TaskID    string               `json:"task_id"`
}

// GetTaskResponse represents a single task read response.
type GetTaskResponse struct {
	Task TaskView `json:"task"`
}

// ListTasksRequest represents a task listing request.
type ListTasksRequest struct {
	Principal  userdomain.Principal `json:"principal"`
	Status     string               `json:"status,omitempty"`
	Priority   string               `json:"priority,omitempty"`
	AssignedTo string               `json:"assigned_to,omitempty"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

// ListTasksResponse represents a task listing response.
type ListTasksResponse struct {
	Tasks      []TaskView `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// UpdateTaskRequest represents a task update request. Pointer fields are
// absent when nil; the Clear flags distinguish "leave unchanged" from
// "explicitly clear".
type UpdateTaskRequest struct {
	Principal     userdomain.Principal `json:"principal"`
	TaskID        string               `json:"task_id"`
	Title         *string              `json:"title,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Status        *string              `json:"status,omitempty"`
	Priority      *string              `json:"priority,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	ClearDueDate  bool                 `json:"clear_due_date,omitempty"`
	AssignedTo    *string              `json:"assigned_to,omitempty"`
	ClearAssignee bool                 `json:"clear_assignee,omitempty"`
	Documents     []AttachmentUpload   `json:"documents,omitempty"`
}

// UpdateTaskResponse represents a task update response.
type UpdateTaskResponse struct {
	Task TaskView `json:"task"`
}

// DeleteTaskRequest represents a task deletion request.
type DeleteTaskRequest struct {
	Principal userdomain.Principal `json:"principal"`
	TaskID    string               `json:"task_id"`
}

// DeleteTaskResponse represents a task deletion response.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// DownloadDocumentRequest represents a document content request.
type DownloadDocumentRequest struct {
	Principal  userdomain.Principal `json:"principal"`
	TaskID     string               `json:"task_id"`
	DocumentID string               `json:"document_id"`
}

// DownloadDocumentResponse carries document content back to the caller.
type DownloadDocumentResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// RemoveDocumentRequest represents a document removal request.
type RemoveDocumentRequest struct {
	Principal  userdomain.Principal `json:"principal"`
	TaskID     string               `json:"task_id"`
	DocumentID string               `json:"document_id"`
}

// RemoveDocumentResponse represents a document removal response.
type RemoveDocumentResponse struct {
	Removed bool `json:"removed"`
}

// newDocumentView converts a document entity to its external representation.
func newDocumentView(d domain.Document) DocumentView {
	return DocumentView{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		Size:         d.Size,
		ContentType:  d.ContentType,
		UploadedBy:   d.UploadedBy,
		CreatedAt:    d.CreatedAt,
	}
}

// newTaskView converts a task entity to its external representation.
func newTaskView(t *domain.Task, now time.Time) TaskView {
	docs := make([]DocumentView, 0, len(t.Documents))
	for _, d := range t.Documents {
		docs = append(docs, newDocumentView(d))
	}
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Overdue:     t.IsOverdue(now),
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Documents:   docs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
