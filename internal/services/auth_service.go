package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/token"
)

var (
	ErrInvalidActivationToken = errors.New("invalid or expired activation token")
	ErrInvalidCredentials     = errors.New("incorrect email or password")
	ErrPasswordTooShort       = errors.New("password too short")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// AuthService handles account activation and employee login.
type AuthService struct {
	employees repository.EmployeeRepository
	tokens    *token.Manager
}

// NewAuthService creates a new AuthService.
func NewAuthService(employees repository.EmployeeRepository, tokens *token.Manager) *AuthService {
	return &AuthService{
		employees: employees,
		tokens:    tokens,
	}
}

// Activate redeems a single-use activation token, stores the password hash
// and transitions the employee from invited to active.
func (s *AuthService) Activate(ctx context.Context, activationToken, password string) (*models.Employee, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var activated *models.Employee
	err = withRetry(func() error {
		employee, err := s.employees.FindByActivationToken(ctx, activationToken)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidActivationToken
		}
		if err != nil {
			return fmt.Errorf("failed to find activation token: %w", err)
		}
		if employee.ActivationExpiresAt != nil && time.Now().After(*employee.ActivationExpiresAt) {
			return ErrInvalidActivationToken
		}

		employee.Status = models.EmployeeStatusActive
		employee.HashedPassword = string(hashed)
		employee.ActivationToken = ""
		employee.ActivationExpiresAt = nil
		if err := s.employees.Update(ctx, employee); err != nil {
			return err
		}
		activated = employee
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidActivationToken) {
			return nil, ErrInvalidActivationToken
		}
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}
	return activated, nil
}

// Login verifies the credentials of an active employee and issues a bearer
// token. Invited and deactivated accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Employee, error) {
	employee, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find employee: %w", err)
	}

	if employee.Status != models.EmployeeStatusActive || employee.HashedPassword == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.HashedPassword), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	bearer, err := s.tokens.Generate(employee.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return bearer, employee, nil
}
