package task

import (
	"errors"

	domain "github.com/example/taskboard/domain/task"
	userdomain "github.com/example/taskboard/domain/user"
	"gorm.io/gorm"
)

// TaskFilter narrows task listings. Empty fields match everything.
type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo string
}

// TaskRepository handles task and document persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

// Save creates or updates a task.
func (r *TaskRepository) Save(task *domain.Task) error {
	return r.db.Save(task).Error
}

// FindByID finds a task by ID with its documents preloaded.
func (r *TaskRepository) FindByID(taskID string) (*domain.Task, error) {
	var task domain.Task
	result := r.db.Preload("Documents").First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// FindPage returns a page of tasks visible to the viewer, newest first.
// Non-admin viewers only see tasks they created or are assigned to.
func (r *TaskRepository) FindPage(viewer userdomain.Principal, filter TaskFilter, page, limit int) ([]*domain.Task, int64, error) {
	query := r.db.Model(&domain.Task{})

	if !viewer.IsAdmin() {
		query = query.Where("created_by = ? OR assigned_to = ?", viewer.ID, viewer.ID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []*domain.Task
	offset := (page - 1) * limit
	err := query.
		Preload("Documents").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Delete removes a task and its document records in one transaction and
// returns the removed document records so callers can clean up blobs.
func (r *TaskRepository) Delete(taskID string) ([]domain.Document, error) {
	task, err := r.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Document{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Task{}, "id = ?", taskID).Error
	})
	if err != nil {
		return nil, err
	}

	return task.Documents, nil
}

// AddDocuments appends document records to a task.
func (r *TaskRepository) AddDocuments(docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.Create(&docs).Error
}

// FindDocument finds a document belonging to the given task.
func (r *TaskRepository) FindDocument(taskID, documentID string) (*domain.Document, error) {
	var doc domain.Document
	result := r.db.First(&doc, "id = ? AND task_id = ?", documentID, taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, result.Error
	}
	return &doc, nil
}

// DeleteDocument removes a single document record.
func (r *TaskRepository) DeleteDocument(taskID, documentID string) error {
	result := r.db.Delete(&domain.Document{}, "id = ? AND task_id = ?", documentID, taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// CountDocuments returns the number of documents attached to a task.
func (r *TaskRepository) CountDocuments(taskID string) (int, error) {
	var count int64
	result := r.db.Model(&domain.Document{}).Where("task_id = ?", taskID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}
