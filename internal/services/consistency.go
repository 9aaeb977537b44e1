package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// Shared invariant errors reported at the registry boundary.
var (
	ErrInvalidMember   = errors.New("employee is deactivated or does not exist")
	ErrInvalidAssignee = errors.New("employee is not a member of the parent project")
	ErrInvalidPayroll  = errors.New("payroll can only be set for project members")
)

// maxWriteRetries bounds how often a read-validate-write cycle is retried
// after losing a race to a concurrent writer.
const maxWriteRetries = 3

// withRetry re-runs fn while it fails with a version conflict, up to
// maxWriteRetries attempts. fn must re-fetch the document it writes.
func withRetry(fn func() error) error {
	var err error
	for i := 0; i < maxWriteRetries; i++ {
		err = fn()
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// Enforcer holds the cross-entity invariant checks and cascade routines
// invoked by the employee, project and task services. The store offers no
// multi-document transactions, so cascades write the narrower invariant
// first: task assignee sets are corrected before project membership, and
// project membership before an employee's own document. A crash mid-cascade
// then leaves an over-permissive but never orphaned state, and every
// routine here is idempotent so the cascade can simply run again.
type Enforcer struct {
	employees repository.EmployeeRepository
	projects  repository.ProjectRepository
	tasks     repository.TaskRepository
}

// NewEnforcer creates a new Enforcer.
func NewEnforcer(employees repository.EmployeeRepository, projects repository.ProjectRepository, tasks repository.TaskRepository) *Enforcer {
	return &Enforcer{
		employees: employees,
		projects:  projects,
		tasks:     tasks,
	}
}

// ValidateActiveEmployees fails with ErrInvalidMember unless every ID
// references an employee whose status is active.
func (e *Enforcer) ValidateActiveEmployees(ctx context.Context, employeeIDs []string) error {
	for _, id := range employeeIDs {
		employee, err := e.employees.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("employee %q: %w", id, ErrInvalidMember)
		}
		if err != nil {
			return fmt.Errorf("verify employee %q: %w", id, err)
		}
		if employee.Status != models.EmployeeStatusActive {
			return fmt.Errorf("employee %q: %w", id, ErrInvalidMember)
		}
	}
	return nil
}

// ValidatePayroll fails with ErrInvalidPayroll unless every payroll key,
// wildcard aside, is in the member set.
func (e *Enforcer) ValidatePayroll(payroll map[string]models.PayrollEntry, members []string) error {
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	for employeeID := range payroll {
		if employeeID == models.PayrollWildcard {
			continue
		}
		if _, ok := memberSet[employeeID]; !ok {
			return fmt.Errorf("employee %q: %w", employeeID, ErrInvalidPayroll)
		}
	}
	return nil
}

// ValidateAssignees fails with ErrInvalidAssignee unless every assignee is
// a member of the project.
func (e *Enforcer) ValidateAssignees(assignees []string, project *models.Project) error {
	for _, id := range assignees {
		if !project.HasMember(id) {
			return fmt.Errorf("employee %q: %w", id, ErrInvalidAssignee)
		}
	}
	return nil
}

// StripAssigneeFromProjectTasks removes the employee from the assignee set
// of every task under the project. This runs before project membership
// shrinks so the subset invariant never observes a member-less assignee.
func (e *Enforcer) StripAssigneeFromProjectTasks(ctx context.Context, projectID, employeeID string) error {
	tasks, err := e.tasks.List(ctx, repository.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return fmt.Errorf("list project tasks: %w", err)
	}

	for _, task := range tasks {
		if !task.HasAssignee(employeeID) {
			continue
		}
		if err := e.stripTaskAssignee(ctx, task.ID, employeeID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveProjectMember removes the employee from the project's member set,
// cascading through the project's tasks first and syncing the employee's
// mirror list afterwards.
func (e *Enforcer) RemoveProjectMember(ctx context.Context, projectID, employeeID string) error {
	if err := e.StripAssigneeFromProjectTasks(ctx, projectID, employeeID); err != nil {
		return err
	}

	err := withRetry(func() error {
		project, err := e.projects.FindByID(ctx, projectID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !project.HasMember(employeeID) {
			return nil
		}
		project.Employees = removeString(project.Employees, employeeID)
		delete(project.Payroll, employeeID)
		return e.projects.Update(ctx, project)
	})
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}

	return e.SyncEmployeeProjects(ctx, projectID, nil, []string{employeeID})
}

// DetachEmployee removes the employee from every project membership and
// every task assignee set. Used by the deactivation cascade; the caller
// persists the employee's own status change only after this succeeds.
func (e *Enforcer) DetachEmployee(ctx context.Context, employeeID string) error {
	projects, err := e.projects.ListByMember(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("list projects of employee: %w", err)
	}

	for _, project := range projects {
		if err := e.RemoveProjectMember(ctx, project.ID, employeeID); err != nil {
			return err
		}
	}
	return nil
}

// SyncEmployeeProjects maintains the employee-side mirror of project
// membership: the project ID is added to every employee in added and
// removed from every employee in removed.
func (e *Enforcer) SyncEmployeeProjects(ctx context.Context, projectID string, added, removed []string) error {
	for _, employeeID := range added {
		if err := e.syncEmployeeProject(ctx, employeeID, projectID, true); err != nil {
			return err
		}
	}
	for _, employeeID := range removed {
		if err := e.syncEmployeeProject(ctx, employeeID, projectID, false); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enforcer) syncEmployeeProject(ctx context.Context, employeeID, projectID string, add bool) error {
	err := withRetry(func() error {
		employee, err := e.employees.FindByID(ctx, employeeID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if add == employee.IsMemberOf(projectID) {
			return nil
		}
		if add {
			employee.Projects = append(employee.Projects, projectID)
		} else {
			employee.Projects = removeString(employee.Projects, projectID)
		}
		return e.employees.Update(ctx, employee)
	})
	if err != nil {
		return fmt.Errorf("sync projects of employee %q: %w", employeeID, err)
	}
	return nil
}

func (e *Enforcer) stripTaskAssignee(ctx context.Context, taskID, employeeID string) error {
	err := withRetry(func() error {
		task, err := e.tasks.FindByID(ctx, taskID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !task.HasAssignee(employeeID) {
			return nil
		}
		task.Employees = removeString(task.Employees, employeeID)
		return e.tasks.Update(ctx, task)
	})
	if err != nil {
		return fmt.Errorf("strip assignee from task %q: %w", taskID, err)
	}
	return nil
}

// removeString returns values without any occurrence of value.
func removeString(values []string, value string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != value {
			result = append(result, v)
		}
	}
	return result
}

// uniqueStrings removes duplicate values while preserving order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
