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
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectNameEmpty      = errors.New("project name cannot be empty")
	ErrProjectHasTimeWindows = errors.New("project has recorded time windows")
)

// ProjectService provides the project lifecycle and membership management.
type ProjectService struct {
	projects repository.ProjectRepository
	windows  repository.TimeWindowRepository
	tasks    repository.TaskRepository
	enforcer *Enforcer
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects repository.ProjectRepository, tasks repository.TaskRepository, windows repository.TimeWindowRepository, enforcer *Enforcer) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		windows:  windows,
		enforcer: enforcer,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Billable    *bool
	Employees   []string
	Payroll     map[string]models.PayrollEntry
	CreatorID   string
}

// Create creates a project. Every initial member must be an active
// employee, and payroll entries may only target members.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameEmpty
	}

	members := uniqueStrings(input.Employees)
	if err := s.enforcer.ValidateActiveEmployees(ctx, members); err != nil {
		return nil, err
	}
	if err := s.enforcer.ValidatePayroll(input.Payroll, members); err != nil {
		return nil, err
	}

	billable := true
	if input.Billable != nil {
		billable = *input.Billable
	}

	project := &models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Billable:    billable,
		Employees:   members,
		Payroll:     input.Payroll,
		Statuses:    models.DefaultStatuses,
		Priorities:  models.DefaultPriorities,
		CreatorID:   input.CreatorID,
		CreatedAt:   time.Now(),
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if err := s.enforcer.SyncEmployeeProjects(ctx, project.ID, members, nil); err != nil {
		return nil, fmt.Errorf("failed to bind members: %w", err)
	}

	return project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// List retrieves all non-archived projects.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projects.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput represents optional field updates for a project.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Billable    *bool
	Employees   *[]string
	Payroll     *map[string]models.PayrollEntry
	Archived    *bool
}

// Update changes a project's details and, when the member set is replaced,
// keeps both sides of the membership binding and the task subset invariant
// intact: removed members are stripped from the project's tasks before the
// shrunk member set is persisted.
func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*models.Project, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrProjectNameEmpty
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var added, removed []string
	finalMembers := current.Employees
	if input.Employees != nil {
		newMembers := uniqueStrings(*input.Employees)
		added, removed = diffStrings(current.Employees, newMembers)
		if err := s.enforcer.ValidateActiveEmployees(ctx, added); err != nil {
			return nil, err
		}
		finalMembers = newMembers
	}

	finalPayroll := current.Payroll
	if input.Payroll != nil {
		finalPayroll = *input.Payroll
	}
	if err := s.enforcer.ValidatePayroll(finalPayroll, finalMembers); err != nil {
		return nil, err
	}

	for _, employeeID := range removed {
		if err := s.enforcer.StripAssigneeFromProjectTasks(ctx, id, employeeID); err != nil {
			return nil, err
		}
	}

	var updated *models.Project
	err = withRetry(func() error {
		project, err := s.projects.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			project.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			project.Description = strings.TrimSpace(*input.Description)
		}
		if input.Billable != nil {
			project.Billable = *input.Billable
		}
		if input.Employees != nil {
			project.Employees = finalMembers
		}
		if input.Payroll != nil {
			project.Payroll = finalPayroll
		}
		if input.Archived != nil {
			project.Archived = *input.Archived
		}

		if err := s.projects.Update(ctx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := s.enforcer.SyncEmployeeProjects(ctx, id, added, removed); err != nil {
		return nil, fmt.Errorf("failed to sync members: %w", err)
	}

	return updated, nil
}

// AddMember adds an active employee to the project's member set. Adding an
// existing member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, projectID, employeeID string) (*models.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.HasMember(employeeID) {
		return project, nil
	}

	if err := s.enforcer.ValidateActiveEmployees(ctx, []string{employeeID}); err != nil {
		return nil, err
	}

	var updated *models.Project
	err = withRetry(func() error {
		project, err := s.projects.FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if !project.HasMember(employeeID) {
			project.Employees = append(project.Employees, employeeID)
			if err := s.projects.Update(ctx, project); err != nil {
				return err
			}
		}
		updated = project
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.enforcer.SyncEmployeeProjects(ctx, projectID, []string{employeeID}, nil); err != nil {
		return nil, fmt.Errorf("failed to bind member: %w", err)
	}

	return updated, nil
}

// RemoveMember removes an employee from the project's member set,
// cascading to the project's task assignee sets first.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, employeeID string) (*models.Project, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	if err := s.enforcer.RemoveProjectMember(ctx, projectID, employeeID); err != nil {
		return nil, err
	}

	return s.Get(ctx, projectID)
}

// Delete removes a project and its tasks. Deletion is blocked while any
// time window references the project, since ledger entries are immutable
// and must keep their anchors.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.windows.CountByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count time windows: %w", err)
	}
	if count > 0 {
		return ErrProjectHasTimeWindows
	}

	tasks, err := s.tasks.List(ctx, repository.TaskFilter{ProjectID: &id})
	if err != nil {
		return fmt.Errorf("failed to list project tasks: %w", err)
	}
	for _, task := range tasks {
		if err := s.tasks.Delete(ctx, task.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to delete task: %w", err)
		}
	}

	if err := s.enforcer.SyncEmployeeProjects(ctx, id, nil, project.Employees); err != nil {
		return fmt.Errorf("failed to unbind members: %w", err)
	}

	if err := s.projects.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// diffStrings returns the values present only in next (added) and only in
// prev (removed).
func diffStrings(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, v := range prev {
		prevSet[v] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, v := range next {
		nextSet[v] = struct{}{}
	}

	for _, v := range next {
		if _, ok := prevSet[v]; !ok {
			added = append(added, v)
		}
	}
	for _, v := range prev {
		if _, ok := nextSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	return added, removed
}
