package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// AnalyticsService aggregates the time window ledger. Durations are clipped
// to the query range, so a window straddling a range boundary contributes
// only its inside part.
type AnalyticsService struct {
	windows   repository.TimeWindowRepository
	projects  repository.ProjectRepository
	tasks     repository.TaskRepository
	employees repository.EmployeeRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(windows repository.TimeWindowRepository, projects repository.ProjectRepository, tasks repository.TaskRepository, employees repository.EmployeeRepository) *AnalyticsService {
	return &AnalyticsService{
		windows:   windows,
		projects:  projects,
		tasks:     tasks,
		employees: employees,
	}
}

// EmployeeTime is one employee's aggregated share of a project report.
type EmployeeTime struct {
	EmployeeID string  `json:"employee_id"`
	Seconds    float64 `json:"seconds"`
	Income     float64 `json:"income"`
}

// ProjectTimeReport aggregates a project's ledger over a query range.
type ProjectTimeReport struct {
	ProjectID    string         `json:"project_id"`
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	TotalSeconds float64        `json:"total_seconds"`
	TotalIncome  float64        `json:"total_income"`
	Employees    []EmployeeTime `json:"employees"`
}

// ProjectTime is one project's aggregated share of an employee report.
type ProjectTime struct {
	ProjectID string  `json:"project_id"`
	Seconds   float64 `json:"seconds"`
}

// EmployeeTimeReport aggregates an employee's ledger over a query range.
type EmployeeTimeReport struct {
	EmployeeID   string        `json:"employee_id"`
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	TotalSeconds float64       `json:"total_seconds"`
	Projects     []ProjectTime `json:"projects"`
}

// ByProject aggregates worked time per employee on one project. Income is
// derived from the project payroll, with the wildcard entry as the fallback
// rate for members without their own entry.
func (s *AnalyticsService) ByProject(ctx context.Context, projectID string, from, to time.Time) (*ProjectTimeReport, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	windows, err := s.windows.ListIntersecting(ctx, repository.TimeWindowFilter{
		From:      from,
		To:        to,
		ProjectID: &projectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time windows: %w", err)
	}

	report := &ProjectTimeReport{
		ProjectID: project.ID,
		From:      from,
		To:        to,
		Employees: []EmployeeTime{},
	}

	seconds := map[string]float64{}
	var order []string
	for _, window := range windows {
		if _, seen := seconds[window.EmployeeID]; !seen {
			order = append(order, window.EmployeeID)
		}
		seconds[window.EmployeeID] += clippedSeconds(window, from, to)
	}

	for _, employeeID := range order {
		worked := seconds[employeeID]
		income := worked / 3600 * billRate(project, employeeID)
		report.Employees = append(report.Employees, EmployeeTime{
			EmployeeID: employeeID,
			Seconds:    worked,
			Income:     income,
		})
		report.TotalSeconds += worked
		report.TotalIncome += income
	}
	return report, nil
}

// ByEmployee aggregates one employee's worked time, broken down by project.
func (s *AnalyticsService) ByEmployee(ctx context.Context, employeeID string, from, to time.Time) (*EmployeeTimeReport, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	windows, err := s.windows.ListIntersecting(ctx, repository.TimeWindowFilter{
		From:       from,
		To:         to,
		EmployeeID: &employee.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time windows: %w", err)
	}

	report := &EmployeeTimeReport{
		EmployeeID: employee.ID,
		From:       from,
		To:         to,
		Projects:   []ProjectTime{},
	}

	seconds := map[string]float64{}
	var order []string
	for _, window := range windows {
		if _, seen := seconds[window.ProjectID]; !seen {
			order = append(order, window.ProjectID)
		}
		seconds[window.ProjectID] += clippedSeconds(window, from, to)
	}

	for _, projectID := range order {
		worked := seconds[projectID]
		report.Projects = append(report.Projects, ProjectTime{
			ProjectID: projectID,
			Seconds:   worked,
		})
		report.TotalSeconds += worked
	}
	return report, nil
}

// TaskTimeReport holds the total recorded time of one employee on one task.
type TaskTimeReport struct {
	EmployeeID   string  `json:"employee_id"`
	TaskID       string  `json:"task_id"`
	TotalSeconds float64 `json:"total_seconds"`
}

// ByTask totals an employee's recorded time on a single task across the
// whole ledger. An employee with no entries yields a zero total.
func (s *AnalyticsService) ByTask(ctx context.Context, employeeID, taskID string) (*TaskTimeReport, error) {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	total, err := s.windows.SumByEmployeeAndTask(ctx, employee.ID, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum task time: %w", err)
	}

	return &TaskTimeReport{
		EmployeeID:   employee.ID,
		TaskID:       task.ID,
		TotalSeconds: total.Seconds(),
	}, nil
}

// Windows returns the raw ledger entries intersecting [from, to), optionally
// limited to one employee.
func (s *AnalyticsService) Windows(ctx context.Context, from, to time.Time, employeeID *string) ([]models.TimeWindow, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	windows, err := s.windows.ListIntersecting(ctx, repository.TimeWindowFilter{
		From:       from,
		To:         to,
		EmployeeID: employeeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time windows: %w", err)
	}
	if windows == nil {
		windows = []models.TimeWindow{}
	}
	return windows, nil
}

// clippedSeconds returns the length of the window's intersection with
// [from, to) in seconds.
func clippedSeconds(window models.TimeWindow, from, to time.Time) float64 {
	start := window.Start
	if start.Before(from) {
		start = from
	}
	end := window.End
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Seconds()
}

// billRate resolves the member's hourly rate from the project payroll,
// falling back to the wildcard entry.
func billRate(project *models.Project, employeeID string) float64 {
	if entry, ok := project.Payroll[employeeID]; ok {
		return entry.BillRate
	}
	if entry, ok := project.Payroll[models.PayrollWildcard]; ok {
		return entry.BillRate
	}
	return 0
}
