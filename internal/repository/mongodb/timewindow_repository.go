package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// TimeWindowRepository is a MongoDB implementation of
// repository.TimeWindowRepository. The ledger is append-only; there is no
// update or delete of individual entries.
type TimeWindowRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// CreateExclusive appends a ledger entry unless the employee already has a
// window intersecting [Start, End). Two windows overlap when each starts
// before the other ends. The overlap count and the insert run inside one
// session transaction so a concurrent submission of the same interval
// cannot slip between them.
func (r *TimeWindowRepository) CreateExclusive(ctx context.Context, window *models.TimeWindow) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		count, err := r.coll.CountDocuments(ctx, bson.M{
			"employee_id": window.EmployeeID,
			"start":       bson.M{"$lt": window.End},
			"end":         bson.M{"$gt": window.Start},
		})
		if err != nil {
			return nil, fmt.Errorf("count overlapping windows: %w", err)
		}
		if count > 0 {
			return nil, repository.ErrOverlap
		}
		if _, err := r.coll.InsertOne(ctx, window); err != nil {
			return nil, fmt.Errorf("insert time window: %w", err)
		}
		return nil, nil
	})
	return err
}

// ListIntersecting retrieves windows intersecting the filter range.
func (r *TimeWindowRepository) ListIntersecting(ctx context.Context, filter repository.TimeWindowFilter) ([]models.TimeWindow, error) {
	query := bson.M{
		"start": bson.M{"$lt": filter.To},
		"end":   bson.M{"$gt": filter.From},
	}
	if filter.EmployeeID != nil {
		query["employee_id"] = *filter.EmployeeID
	}
	if filter.ProjectID != nil {
		query["project_id"] = *filter.ProjectID
	}
	if filter.TaskID != nil {
		query["task_id"] = *filter.TaskID
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find time windows: %w", err)
	}

	var windows []models.TimeWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("decode time windows: %w", err)
	}
	return windows, nil
}

// SumByEmployeeAndTask returns the total recorded duration of the employee
// on the task, aggregated server-side.
func (r *TimeWindowRepository) SumByEmployeeAndTask(ctx context.Context, employeeID, taskID string) (time.Duration, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"employee_id": employeeID,
			"task_id":     taskID,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$subtract": bson.A{"$end", "$start"}}},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("aggregate task time: %w", err)
	}

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode task time: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return time.Duration(results[0].Total) * time.Millisecond, nil
}

// CountByProject counts ledger entries anchored to the project.
func (r *TimeWindowRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, fmt.Errorf("count windows by project: %w", err)
	}
	return count, nil
}

// CountByTask counts ledger entries anchored to the task.
func (r *TimeWindowRepository) CountByTask(ctx context.Context, taskID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return 0, fmt.Errorf("count windows by task: %w", err)
	}
	return count, nil
}

// BulkUpdate applies the update to every window matching employeeID and/or
// projectID. Only annotation fields may change.
func (r *TimeWindowRepository) BulkUpdate(ctx context.Context, employeeID, projectID *string, update repository.TimeWindowBulkUpdate) (int64, error) {
	query := bson.M{}
	if employeeID != nil {
		query["employee_id"] = *employeeID
	}
	if projectID != nil {
		query["project_id"] = *projectID
	}

	set := bson.M{}
	if update.Note != nil {
		set["note"] = *update.Note
	}
	if update.Billable != nil {
		set["billable"] = *update.Billable
	}
	if update.Paid != nil {
		set["paid"] = *update.Paid
	}

	res, err := r.coll.UpdateMany(ctx, query, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("bulk update time windows: %w", err)
	}
	return res.ModifiedCount, nil
}
