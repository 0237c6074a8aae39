package task

import (
	"context"
	"log"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
)

// eventBusSink publishes notification decisions to the event bus.
// Publishing is best-effort; failures are logged and never fail the
// mutation that triggered them.
type eventBusSink struct {
	bus mono.EventBus
}

// NewEventBusSink creates a NotificationSink backed by the event bus.
func NewEventBusSink(bus mono.EventBus) NotificationSink {
	return &eventBusSink{bus: bus}
}

func (s *eventBusSink) TaskAssigned(_ context.Context, task *domain.Task, assigneeID, assignedBy string) {
	if s.bus == nil {
		return
	}
	event := events.TaskAssignedEvent{
		Task:       toEventPayload(task),
		AssigneeID: assigneeID,
		AssignedBy: assignedBy,
		Timestamp:  time.Now(),
	}
	if err := events.TaskAssignedV1.Publish(s.bus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskAssigned event for task %s: %v", task.ID, err)
	}
}

func (s *eventBusSink) TaskUpdated(_ context.Context, task *domain.Task, assigneeID string) {
	if s.bus == nil {
		return
	}
	event := events.TaskUpdatedEvent{
		Task:       toEventPayload(task),
		AssigneeID: assigneeID,
		Timestamp:  time.Now(),
	}
	if err := events.TaskUpdatedV1.Publish(s.bus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", task.ID, err)
	}
}

func toEventPayload(t *domain.Task) events.TaskPayload {
	return events.TaskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		UpdatedAt:   t.UpdatedAt,
	}
}
