package memdb

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// EmployeeRepository is an in-memory implementation of
// repository.EmployeeRepository. Stored documents are copied on the way in
// and out so callers never share memory with the store.
type EmployeeRepository struct {
	db *memdb.MemDB
}

// Create inserts a new employee document.
func (r *EmployeeRepository) Create(_ context.Context, employee *models.Employee) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEmployees, "email", employee.Email)
	if err != nil {
		return fmt.Errorf("find employee by email: %w", err)
	}
	if raw != nil {
		return repository.ErrDuplicateEmail
	}

	stored := *employee
	if err := txn.Insert(tblEmployees, &stored); err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	txn.Commit()
	return nil
}

// FindByID finds an employee by ID.
func (r *EmployeeRepository) FindByID(_ context.Context, id string) (*models.Employee, error) {
	return r.findOne("id", id)
}

// FindByEmail finds an employee by email.
func (r *EmployeeRepository) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	return r.findOne("email", email)
}

// FindByActivationToken finds an invited employee by activation token.
func (r *EmployeeRepository) FindByActivationToken(_ context.Context, token string) (*models.Employee, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	employee, err := r.findOne("activation_token", token)
	if err != nil {
		return nil, err
	}
	if employee.Status != models.EmployeeStatusInvited {
		return nil, repository.ErrNotFound
	}
	return employee, nil
}

// List retrieves employees matching the filter.
func (r *EmployeeRepository) List(_ context.Context, filter repository.EmployeeFilter) ([]models.Employee, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblEmployees, "id")
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	var employees []models.Employee
	for raw := it.Next(); raw != nil; raw = it.Next() {
		employee := raw.(*models.Employee)
		if filter.Status != nil && employee.Status != *filter.Status {
			continue
		}
		employees = append(employees, *employee)
	}
	return employees, nil
}

// Update writes the employee back conditionally on its version.
func (r *EmployeeRepository) Update(_ context.Context, employee *models.Employee) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEmployees, "id", employee.ID)
	if err != nil {
		return fmt.Errorf("find employee: %w", err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	if raw.(*models.Employee).Version != employee.Version {
		return repository.ErrVersionConflict
	}

	stored := *employee
	stored.Version = employee.Version + 1
	if err := txn.Insert(tblEmployees, &stored); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	txn.Commit()

	employee.Version = stored.Version
	return nil
}

func (r *EmployeeRepository) findOne(index, value string) (*models.Employee, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblEmployees, index, value)
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}

	employee := *raw.(*models.Employee)
	return &employee, nil
}
