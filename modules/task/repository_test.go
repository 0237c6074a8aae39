package task

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/task"
	userdomain "github.com/example/taskboard/domain/user"
	"github.com/google/uuid"
)

func seedTask(t *testing.T, repo *TaskRepository, createdBy, assignedTo string, status domain.TaskStatus, priority domain.TaskPriority, createdAt time.Time) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ID:         uuid.New().String(),
		Title:      "seeded",
		Status:     status,
		Priority:   priority,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := repo.Save(task); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return task
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	_, err := repo.FindByID("missing")
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("FindByID() error = %v, want ErrTaskNotFound", err)
	}
}

func TestRepository_FindPage_Visibility(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	now := time.Now()

	seedTask(t, repo, creator.ID, "", domain.StatusPending, domain.PriorityLow, now)
	seedTask(t, repo, creator.ID, assignee.ID, domain.StatusPending, domain.PriorityLow, now)
	seedTask(t, repo, outsider.ID, "", domain.StatusPending, domain.PriorityLow, now)

	tests := []struct {
		name   string
		viewer userdomain.Principal
		want   int64
	}{
		{"admin sees all", admin, 3},
		{"creator sees own", creator, 2},
		{"assignee sees assigned", assignee, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := repo.FindPage(tt.viewer, TaskFilter{}, 1, 10)
			if err != nil {
				t.Fatalf("FindPage() error = %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestRepository_FindPage_Filters(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	now := time.Now()

	seedTask(t, repo, creator.ID, assignee.ID, domain.StatusPending, domain.PriorityHigh, now)
	seedTask(t, repo, creator.ID, "", domain.StatusCompleted, domain.PriorityLow, now)
	seedTask(t, repo, creator.ID, assignee.ID, domain.StatusCompleted, domain.PriorityHigh, now)

	_, total, err := repo.FindPage(admin, TaskFilter{Status: "completed"}, 1, 10)
	if err != nil {
		t.Fatalf("FindPage() error = %v", err)
	}
	if total != 2 {
		t.Errorf("status filter total = %d, want 2", total)
	}

	_, total, err = repo.FindPage(admin, TaskFilter{Priority: "high", AssignedTo: assignee.ID}, 1, 10)
	if err != nil {
		t.Fatalf("FindPage() error = %v", err)
	}
	if total != 2 {
		t.Errorf("combined filter total = %d, want 2", total)
	}
}

func TestRepository_FindPage_Pagination(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedTask(t, repo, creator.ID, "", domain.StatusPending, domain.PriorityLow, base.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := repo.FindPage(admin, TaskFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("FindPage() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1 size = %d, want 2", len(page1))
	}

	page3, _, err := repo.FindPage(admin, TaskFilter{}, 3, 2)
	if err != nil {
		t.Fatalf("FindPage() error = %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page 3 size = %d, want 1", len(page3))
	}

	// Newest first
	if page1[0].CreatedAt.Before(page1[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestRepository_Delete_CascadesDocumentRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, repo, creator.ID, "", domain.StatusPending, domain.PriorityLow, time.Now())
	docs := []domain.Document{
		{
			ID:           uuid.New().String(),
			TaskID:       task.ID,
			StoredName:   "a.pdf",
			OriginalName: "a.pdf",
			StoragePath:  task.ID + "/a.pdf",
			Size:         8,
			ContentType:  domain.PDFContentType,
			UploadedBy:   creator.ID,
			CreatedAt:    time.Now(),
		},
	}
	if err := repo.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	removed, err := repo.Delete(task.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(removed) != 1 {
		t.Errorf("removed docs = %d, want 1", len(removed))
	}

	var count int64
	if err := db.Model(&domain.Document{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 0 {
		t.Errorf("document records remaining = %d, want 0", count)
	}

	if _, err := repo.Delete(task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("second Delete() error = %v, want ErrTaskNotFound", err)
	}
}

func TestRepository_CountDocuments(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	task := seedTask(t, repo, creator.ID, "", domain.StatusPending, domain.PriorityLow, time.Now())

	count, err := repo.CountDocuments(task.ID)
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	docs := []domain.Document{
		{ID: uuid.New().String(), TaskID: task.ID, StoredName: "a", OriginalName: "a", StoragePath: "p/a", ContentType: domain.PDFContentType, UploadedBy: creator.ID, CreatedAt: time.Now()},
		{ID: uuid.New().String(), TaskID: task.ID, StoredName: "b", OriginalName: "b", StoragePath: "p/b", ContentType: domain.PDFContentType, UploadedBy: creator.ID, CreatedAt: time.Now()},
	}
	if err := repo.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	count, err = repo.CountDocuments(task.ID)
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
