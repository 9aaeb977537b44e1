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

// ProjectRepository is a MongoDB implementation of
// repository.ProjectRepository.
type ProjectRepository struct {
	coll *mongo.Collection
}

// Create inserts a new project document.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if _, err := r.coll.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// FindByID finds a project by ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&project); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

// List retrieves projects, skipping archived ones unless asked.
func (r *ProjectRepository) List(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	query := bson.M{}
	if !includeArchived {
		query["archived"] = false
	}
	return r.find(ctx, query)
}

// ListByMember retrieves every project whose member set contains the
// employee.
func (r *ProjectRepository) ListByMember(ctx context.Context, employeeID string) ([]models.Project, error) {
	return r.find(ctx, bson.M{"employees": employeeID})
}

// Update replaces the project document conditionally on its version.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	replacement := *project
	replacement.Version = project.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{
		"_id":     project.ID,
		"version": project.Version,
	}, &replacement)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, project.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	project.Version = replacement.Version
	return nil
}

// Delete removes a project document.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) find(ctx context.Context, query bson.M) ([]models.Project, error) {
	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}
