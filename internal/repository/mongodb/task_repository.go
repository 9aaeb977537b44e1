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

// TaskRepository is a MongoDB implementation of repository.TaskRepository.
type TaskRepository struct {
	coll *mongo.Collection
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// FindByID finds a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// List retrieves tasks matching the filter.
func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	query := bson.M{}
	if filter.ProjectID != nil {
		query["project_id"] = *filter.ProjectID
	}
	if filter.AssigneeID != nil {
		query["employees"] = *filter.AssigneeID
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces the task document conditionally on its version.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	replacement := *task
	replacement.Version = task.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{
		"_id":     task.ID,
		"version": task.Version,
	}, &replacement)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, task.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	task.Version = replacement.Version
	return nil
}

// Delete removes a task document.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
