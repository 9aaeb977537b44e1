package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t3labs/time-tracker-api/internal/mailer"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrEmailTaken             = errors.New("employee with this email already exists")
	ErrEmployeeNameEmpty      = errors.New("employee name cannot be empty")
	ErrEmployeeEmailEmpty     = errors.New("employee email cannot be empty")
	ErrInvalidPermissionState = errors.New("unknown permission state")
)

// activationTokenTTL is how long an invitation stays redeemable.
const activationTokenTTL = 7 * 24 * time.Hour

// EmployeeService provides the employee lifecycle: invite, update, list and
// the deactivation cascade.
type EmployeeService struct {
	employees repository.EmployeeRepository
	enforcer  *Enforcer
	mailer    mailer.Mailer
	logger    *zap.Logger
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(employees repository.EmployeeRepository, enforcer *Enforcer, m mailer.Mailer, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		enforcer:  enforcer,
		mailer:    m,
		logger:    logger,
	}
}

// InviteEmployeeInput represents parameters to invite a new employee.
type InviteEmployeeInput struct {
	Name  string
	Email string
	Title string
}

// Invite creates a new employee in the invited state and sends the
// activation mail. A failed mail send does not fail the invite; the token
// is logged and the invite can be re-sent out of band.
func (s *EmployeeService) Invite(ctx context.Context, input InviteEmployeeInput) (*models.Employee, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmployeeNameEmpty
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmployeeEmailEmpty
	}

	if _, err := s.employees.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(activationTokenTTL)
	employee := &models.Employee{
		ID:                  uuid.NewString(),
		Name:                name,
		Email:               email,
		Title:               strings.TrimSpace(input.Title),
		Status:              models.EmployeeStatusInvited,
		ActivationToken:     uuid.NewString(),
		ActivationExpiresAt: &expiresAt,
		Projects:            []string{},
		InvitedAt:           now,
		CreatedAt:           now,
	}

	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	if err := s.mailer.SendInvitation(ctx, employee.Email, employee.Name, employee.ActivationToken); err != nil {
		s.logger.Warn("invitation mail failed",
			zap.String("employee_id", employee.ID),
			zap.Error(err),
		)
	}

	return employee, nil
}

// Get retrieves an employee by ID.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return employee, nil
}

// List retrieves employees, optionally filtered by status.
func (s *EmployeeService) List(ctx context.Context, status *models.EmployeeStatus) ([]models.Employee, error) {
	employees, err := s.employees.List(ctx, repository.EmployeeFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// UpdateEmployeeInput represents optional field updates for an employee.
type UpdateEmployeeInput struct {
	Name  *string
	Email *string
	Title *string
}

// Update changes an employee's details.
func (s *EmployeeService) Update(ctx context.Context, id string, input UpdateEmployeeInput) (*models.Employee, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrEmployeeNameEmpty
	}

	var updated *models.Employee
	err := withRetry(func() error {
		employee, err := s.employees.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			employee.Name = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" {
				return ErrEmployeeEmailEmpty
			}
			if email != employee.Email {
				if other, err := s.employees.FindByEmail(ctx, email); err == nil && other.ID != employee.ID {
					return ErrEmailTaken
				} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("failed to check email: %w", err)
				}
				employee.Email = email
			}
		}
		if input.Title != nil {
			employee.Title = strings.TrimSpace(*input.Title)
		}

		if err := s.employees.Update(ctx, employee); err != nil {
			return err
		}
		updated = employee
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrEmployeeEmailEmpty) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return updated, nil
}

// Deactivate transitions the employee to deactivated, first removing it
// from every project membership and task assignee set. The employee's own
// document is written last: a crash mid-cascade leaves the employee active
// and the whole operation safely retryable. Deactivating an already
// deactivated employee is a no-op.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if employee.Status == models.EmployeeStatusDeactivated {
		return employee, nil
	}

	if err := s.enforcer.DetachEmployee(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to cascade deactivation: %w", err)
	}

	var deactivated *models.Employee
	err = withRetry(func() error {
		employee, err := s.employees.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if employee.Status == models.EmployeeStatusDeactivated {
			deactivated = employee
			return nil
		}
		now := time.Now()
		employee.Status = models.EmployeeStatusDeactivated
		employee.DeactivatedAt = &now
		employee.Projects = []string{}
		if err := s.employees.Update(ctx, employee); err != nil {
			return err
		}
		deactivated = employee
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate employee: %w", err)
	}

	s.logger.Info("employee deactivated", zap.String("employee_id", id))
	return deactivated, nil
}

// UpdateSystemPermissions records the permission snapshot the tracking app
// reported from one of the employee's computers, replacing any earlier
// snapshot for the same computer name.
func (s *EmployeeService) UpdateSystemPermissions(ctx context.Context, id, computer string, permissions models.SystemPermissions) (*models.Employee, error) {
	normalized, err := normalizePermissionState(permissions.Accessibility)
	if err != nil {
		return nil, err
	}
	permissions.Accessibility = normalized
	normalized, err = normalizePermissionState(permissions.ScreenAudioRecording)
	if err != nil {
		return nil, err
	}
	permissions.ScreenAudioRecording = normalized

	var updated *models.Employee
	err = withRetry(func() error {
		employee, err := s.employees.FindByID(ctx, id)
		if err != nil {
			return err
		}

		snapshot := models.ComputerPermissions{
			Computer:    computer,
			Permissions: permissions,
			ReportedAt:  time.Now(),
		}
		replaced := false
		perms := make([]models.ComputerPermissions, 0, len(employee.SystemPermissions)+1)
		for _, entry := range employee.SystemPermissions {
			if entry.Computer == computer {
				perms = append(perms, snapshot)
				replaced = true
				continue
			}
			perms = append(perms, entry)
		}
		if !replaced {
			perms = append(perms, snapshot)
		}
		employee.SystemPermissions = perms

		if err := s.employees.Update(ctx, employee); err != nil {
			return err
		}
		updated = employee
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to update system permissions: %w", err)
	}
	return updated, nil
}

// normalizePermissionState maps the empty state to undetermined and rejects
// anything outside the three known states.
func normalizePermissionState(state models.SystemPermissionState) (models.SystemPermissionState, error) {
	switch state {
	case "":
		return models.PermissionUndetermined, nil
	case models.PermissionAuthorized, models.PermissionDenied, models.PermissionUndetermined:
		return state, nil
	default:
		return "", ErrInvalidPermissionState
	}
}
