package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPayload is the task snapshot carried inside notification events.
type TaskPayload struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `json:"created_by"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskAssignedEvent is emitted when a task is assigned to a user who is not
// the actor performing the assignment.
type TaskAssignedEvent struct {
	Task       TaskPayload `json:"task"`
	AssigneeID string      `json:"assignee_id"`
	AssignedBy string      `json:"assigned_by"`
	Timestamp  time.Time   `json:"timestamp"`
}

// TaskAssignedV1 is the typed event definition for task assignment.
// Subject: events.task.v1.task-assigned
var TaskAssignedV1 = helper.EventDefinition[TaskAssignedEvent](
	"task", "TaskAssigned", "v1",
)

// TaskUpdatedEvent is emitted on every successful update of a task that has
// an assignee, addressed to that assignee.
type TaskUpdatedEvent struct {
	Task       TaskPayload `json:"task"`
	AssigneeID string      `json:"assignee_id"`
	Timestamp  time.Time   `json:"timestamp"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)
