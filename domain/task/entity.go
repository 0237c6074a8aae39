package task

import "time"

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// IsValid returns true if the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid returns true if the priority is one of the known values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Limits on task fields and attachments.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
	MaxDocumentsPerTask  = 3
)

// PDFContentType is the only content type accepted for attachments.
const PDFContentType = "application/pdf"

// Task is the core domain entity representing a work item.
// CreatedBy is set once at creation and never changes. AssignedTo is empty
// when the task is unassigned.
type Task struct {
	ID          string       `gorm:"primaryKey;type:text" json:"id"`
	Title       string       `gorm:"not null;type:text" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"not null;type:text;default:pending" json:"status"`
	Priority    TaskPriority `gorm:"not null;type:text;default:medium" json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedBy   string       `gorm:"index;not null;type:text" json:"created_by"`
	AssignedTo  string       `gorm:"index;type:text" json:"assigned_to,omitempty"`
	Documents   []Document   `gorm:"foreignKey:TaskID" json:"documents"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether the task's due date has passed without completion.
// Derived, never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// Document is a PDF file attached to exactly one task.
type Document struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	TaskID       string    `gorm:"index;not null;type:text" json:"task_id"`
	StoredName   string    `gorm:"not null;type:text" json:"stored_name"`
	OriginalName string    `gorm:"not null;type:text" json:"original_name"`
	StoragePath  string    `gorm:"not null;type:text" json:"-"`
	Size         int64     `gorm:"not null" json:"size"`
	ContentType  string    `gorm:"not null;type:text" json:"content_type"`
	UploadedBy   string    `gorm:"not null;type:text" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name for the Document entity.
func (Document) TableName() string {
	return "documents"
}
