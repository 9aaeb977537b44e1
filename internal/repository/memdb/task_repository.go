package memdb

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// TaskRepository is an in-memory implementation of repository.TaskRepository.
type TaskRepository struct {
	db *memdb.MemDB
}

// Create inserts a new task document.
func (r *TaskRepository) Create(_ context.Context, task *models.Task) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	stored := *task
	if err := txn.Insert(tblTasks, &stored); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	txn.Commit()
	return nil
}

// FindByID finds a task by ID.
func (r *TaskRepository) FindByID(_ context.Context, id string) (*models.Task, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblTasks, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}

	task := *raw.(*models.Task)
	return &task, nil
}

// List retrieves tasks matching the filter.
func (r *TaskRepository) List(_ context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblTasks, "id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var tasks []models.Task
	for raw := it.Next(); raw != nil; raw = it.Next() {
		task := raw.(*models.Task)
		if filter.ProjectID != nil && task.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssigneeID != nil && !task.HasAssignee(*filter.AssigneeID) {
			continue
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// Update writes the task back conditionally on its version.
func (r *TaskRepository) Update(_ context.Context, task *models.Task) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblTasks, "id", task.ID)
	if err != nil {
		return fmt.Errorf("find task: %w", err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	if raw.(*models.Task).Version != task.Version {
		return repository.ErrVersionConflict
	}

	stored := *task
	stored.Version = task.Version + 1
	if err := txn.Insert(tblTasks, &stored); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	txn.Commit()

	task.Version = stored.Version
	return nil
}

// Delete removes a task document.
func (r *TaskRepository) Delete(_ context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblTasks, "id", id)
	if err != nil {
		return fmt.Errorf("find task: %w", err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	if err := txn.Delete(tblTasks, raw); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	txn.Commit()
	return nil
}
