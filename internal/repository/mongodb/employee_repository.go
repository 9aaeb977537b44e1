package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// EmployeeRepository is a MongoDB implementation of
// repository.EmployeeRepository.
type EmployeeRepository struct {
	coll *mongo.Collection
}

// Create inserts a new employee document.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if _, err := r.coll.InsertOne(ctx, employee); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// FindByID finds an employee by ID.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds an employee by email.
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByActivationToken finds an invited employee by activation token.
func (r *EmployeeRepository) FindByActivationToken(ctx context.Context, token string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{
		"activation_token": token,
		"status":           models.EmployeeStatusInvited,
	})
}

// List retrieves employees matching the filter.
func (r *EmployeeRepository) List(ctx context.Context, filter repository.EmployeeFilter) ([]models.Employee, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}

	var employees []models.Employee
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return employees, nil
}

// Update replaces the employee document conditionally on its version.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	replacement := *employee
	replacement.Version = employee.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{
		"_id":     employee.ID,
		"version": employee.Version,
	}, &replacement)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, employee.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	employee.Version = replacement.Version
	return nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, query bson.M) (*models.Employee, error) {
	var employee models.Employee
	if err := r.coll.FindOne(ctx, query).Decode(&employee); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}
