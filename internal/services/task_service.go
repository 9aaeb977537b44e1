package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskNameEmpty        = errors.New("task name cannot be empty")
	ErrTaskProjectImmutable = errors.New("task cannot move to another project")
	ErrTaskHasTimeWindows   = errors.New("task has recorded time windows")
)

// TaskService provides the task lifecycle and assignee management. Assignee
// sets always stay a subset of the parent project's member set.
type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	windows  repository.TimeWindowRepository
	enforcer *Enforcer
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, windows repository.TimeWindowRepository, enforcer *Enforcer) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		windows:  windows,
		enforcer: enforcer,
	}
}

// CreateTaskInput represents parameters to create a new task.
type CreateTaskInput struct {
	Name        string
	ProjectID   string
	Description string
	Billable    *bool
	Employees   []string
	Status      string
	Priority    string
	CreatorID   string
}

// Create creates a task under an existing project. Every assignee must
// already be a member of that project.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTaskNameEmpty
	}

	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	assignees := uniqueStrings(input.Employees)
	if err := s.enforcer.ValidateAssignees(assignees, project); err != nil {
		return nil, err
	}

	billable := project.Billable
	if input.Billable != nil {
		billable = *input.Billable
	}
	status := input.Status
	if status == "" {
		status = models.DefaultTaskStatus
	}
	priority := input.Priority
	if priority == "" {
		priority = models.DefaultTaskPriority
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Name:        name,
		ProjectID:   project.ID,
		Description: strings.TrimSpace(input.Description),
		Billable:    billable,
		Employees:   assignees,
		Status:      status,
		Priority:    priority,
		CreatorID:   input.CreatorID,
		CreatedAt:   time.Now(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// List retrieves tasks, optionally scoped to one project.
func (s *TaskService) List(ctx context.Context, projectID *string) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListForEmployee retrieves the tasks the employee is assigned to.
func (s *TaskService) ListForEmployee(ctx context.Context, employeeID string) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{AssigneeID: &employeeID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput represents optional field updates for a task.
type UpdateTaskInput struct {
	Name        *string
	ProjectID   *string
	Description *string
	Billable    *bool
	Employees   *[]string
	Status      *string
	Priority    *string
}

// Update changes a task's details. The parent project is immutable, and the
// final assignee set is re-validated against the parent's members.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrTaskNameEmpty
	}

	var updated *models.Task
	err := withRetry(func() error {
		task, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
			return ErrTaskProjectImmutable
		}

		if input.Name != nil {
			task.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			task.Description = strings.TrimSpace(*input.Description)
		}
		if input.Billable != nil {
			task.Billable = *input.Billable
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.Employees != nil {
			assignees := uniqueStrings(*input.Employees)
			project, err := s.projects.FindByID(ctx, task.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to find project: %w", err)
			}
			if err := s.enforcer.ValidateAssignees(assignees, project); err != nil {
				return err
			}
			task.Employees = assignees
		}

		if err := s.tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if errors.Is(err, ErrTaskProjectImmutable) || errors.Is(err, ErrInvalidAssignee) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// AddAssignee assigns an employee to the task. The employee must already be
// a member of the parent project; assigning an existing assignee is a
// no-op.
func (s *TaskService) AddAssignee(ctx context.Context, taskID, employeeID string) (*models.Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if !project.HasMember(employeeID) {
		return nil, fmt.Errorf("employee %q: %w", employeeID, ErrInvalidAssignee)
	}

	var updated *models.Task
	err = withRetry(func() error {
		task, err := s.tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if !task.HasAssignee(employeeID) {
			task.Employees = append(task.Employees, employeeID)
			if err := s.tasks.Update(ctx, task); err != nil {
				return err
			}
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to add assignee: %w", err)
	}
	return updated, nil
}

// RemoveAssignee removes an employee from the task's assignee set.
func (s *TaskService) RemoveAssignee(ctx context.Context, taskID, employeeID string) (*models.Task, error) {
	var updated *models.Task
	err := withRetry(func() error {
		task, err := s.tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.HasAssignee(employeeID) {
			task.Employees = removeString(task.Employees, employeeID)
			if err := s.tasks.Update(ctx, task); err != nil {
				return err
			}
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to remove assignee: %w", err)
	}
	return updated, nil
}

// Delete removes a task. Deletion is blocked while any time window
// references the task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.windows.CountByTask(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count time windows: %w", err)
	}
	if count > 0 {
		return ErrTaskHasTimeWindows
	}

	if err := s.tasks.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
