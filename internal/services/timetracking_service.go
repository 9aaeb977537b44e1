package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

var (
	ErrInvalidRange      = errors.New("end must be after start")
	ErrOverlappingWindow = errors.New("time window overlaps an existing entry")
	ErrNotAssigned       = errors.New("employee is not assigned to the task")
	ErrEmployeeInactive  = errors.New("employee is not active")
	ErrProjectArchived   = errors.New("project is archived")
	ErrEmptyBulkFilter   = errors.New("an employee or project filter is required")
	ErrEmptyBulkUpdate   = errors.New("no update fields provided")
)

// TimeTrackingService records worked time against tasks. The ledger is
// append-only, and no two windows of one employee may overlap.
type TimeTrackingService struct {
	windows   repository.TimeWindowRepository
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	employees repository.EmployeeRepository
}

// NewTimeTrackingService creates a new TimeTrackingService.
func NewTimeTrackingService(windows repository.TimeWindowRepository, tasks repository.TaskRepository, projects repository.ProjectRepository, employees repository.EmployeeRepository) *TimeTrackingService {
	return &TimeTrackingService{
		windows:   windows,
		tasks:     tasks,
		projects:  projects,
		employees: employees,
	}
}

// SubmitTimeWindowInput represents a worked interval to record.
type SubmitTimeWindowInput struct {
	EmployeeID string
	TaskID     string
	Start      time.Time
	End        time.Time
	Note       string
	Computer   string
	OS         string
}

// Submit records a time window for an employee. The employee must be active,
// assigned to the task, and a member of the task's project, and the interval
// must not overlap any window the employee already recorded.
func (s *TimeTrackingService) Submit(ctx context.Context, input SubmitTimeWindowInput) (*models.TimeWindow, error) {
	if !input.End.After(input.Start) {
		return nil, ErrInvalidRange
	}

	employee, err := s.employees.FindByID(ctx, input.EmployeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if employee.Status != models.EmployeeStatusActive {
		return nil, ErrEmployeeInactive
	}

	task, err := s.tasks.FindByID(ctx, input.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.Archived {
		return nil, ErrProjectArchived
	}
	if !project.HasMember(employee.ID) || !task.HasAssignee(employee.ID) {
		return nil, ErrNotAssigned
	}

	window := &models.TimeWindow{
		ID:         uuid.NewString(),
		EmployeeID: employee.ID,
		TaskID:     task.ID,
		ProjectID:  project.ID,
		Start:      input.Start,
		End:        input.End,
		Note:       input.Note,
		Computer:   input.Computer,
		OS:         input.OS,
		Billable:   task.Billable,
		CreatedAt:  time.Now(),
	}

	// One atomic check-and-insert in the store, so two racing submissions
	// of the same interval cannot both pass an overlap check and land.
	if err := s.windows.CreateExclusive(ctx, window); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrOverlappingWindow
		}
		return nil, fmt.Errorf("failed to create time window: %w", err)
	}
	return window, nil
}

// BulkUpdateInput selects windows by employee and/or project and applies the
// same field changes to all of them.
type BulkUpdateInput struct {
	EmployeeID *string
	ProjectID  *string
	Note       *string
	Billable   *bool
	Paid       *bool
}

// BulkUpdate updates every time window recorded by an employee and/or against
// a project. It returns the number of windows changed.
func (s *TimeTrackingService) BulkUpdate(ctx context.Context, input BulkUpdateInput) (int64, error) {
	if input.EmployeeID == nil && input.ProjectID == nil {
		return 0, ErrEmptyBulkFilter
	}
	if input.Note == nil && input.Billable == nil && input.Paid == nil {
		return 0, ErrEmptyBulkUpdate
	}

	update := repository.TimeWindowBulkUpdate{
		Note:     input.Note,
		Billable: input.Billable,
		Paid:     input.Paid,
	}

	count, err := s.windows.BulkUpdate(ctx, input.EmployeeID, input.ProjectID, update)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update time windows: %w", err)
	}
	return count, nil
}
