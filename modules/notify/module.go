package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotifyModule consumes task notification events and fans them out to the
// WebSocket clients of the addressed user.
type NotifyModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*NotifyModule)(nil)
var _ mono.EventConsumerModule = (*NotifyModule)(nil)
var _ mono.HealthCheckableModule = (*NotifyModule)(nil)

// NewModule creates a new NotifyModule.
func NewModule() *NotifyModule {
	return &NotifyModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *NotifyModule) Name() string {
	return "notify"
}

// Start initializes the module and starts the hub.
func (m *NotifyModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[notify] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the module.
func (m *NotifyModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[notify] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *NotifyModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *NotifyModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskAssignedV1, m.handleTaskAssigned, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskAssigned consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskUpdatedV1, m.handleTaskUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	log.Println("[notify] Registered event consumers: TaskAssigned, TaskUpdated")
	return nil
}

func (m *NotifyModule) handleTaskAssigned(_ context.Context, event events.TaskAssignedEvent, _ *mono.Msg) error {
	log.Printf("[notify] Delivering TaskAssigned for task %s to user %s", event.Task.ID, event.AssigneeID)

	m.hub.SendToUser(event.AssigneeID, WSNotification{
		Type:       "task_assigned",
		Task:       event.Task,
		AssignedBy: event.AssignedBy,
		Timestamp:  event.Timestamp,
	})

	return nil
}

func (m *NotifyModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	log.Printf("[notify] Delivering TaskUpdated for task %s to user %s", event.Task.ID, event.AssigneeID)

	m.hub.SendToUser(event.AssigneeID, WSNotification{
		Type:      "task_updated",
		Task:      event.Task,
		Timestamp: event.Timestamp,
	})

	return nil
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *NotifyModule) GetHub() *Hub {
	return m.hub
}

// WSNotification is the structure sent to WebSocket clients.
type WSNotification struct {
	Type       string             `json:"type"`
	Task       events.TaskPayload `json:"task"`
	AssignedBy string             `json:"assigned_by,omitempty"`
	Timestamp  time.Time          `json:"timestamp,omitempty"`
}
