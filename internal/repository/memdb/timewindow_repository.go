package memdb

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// TimeWindowRepository is an in-memory implementation of
// repository.TimeWindowRepository.
type TimeWindowRepository struct {
	db *memdb.MemDB
}

// CreateExclusive appends a ledger entry unless the employee already has an
// intersecting window. The overlap scan runs inside the write transaction,
// and go-memdb admits a single writer at a time, so concurrent submissions
// of the same interval cannot both land.
func (r *TimeWindowRepository) CreateExclusive(_ context.Context, window *models.TimeWindow) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tblTimeWindows, "employee_id", window.EmployeeID)
	if err != nil {
		return fmt.Errorf("list windows by employee: %w", err)
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if raw.(*models.TimeWindow).Overlaps(window.Start, window.End) {
			return repository.ErrOverlap
		}
	}

	stored := *window
	if err := txn.Insert(tblTimeWindows, &stored); err != nil {
		return fmt.Errorf("insert time window: %w", err)
	}
	txn.Commit()
	return nil
}

// ListIntersecting retrieves windows intersecting the filter range.
func (r *TimeWindowRepository) ListIntersecting(_ context.Context, filter repository.TimeWindowFilter) ([]models.TimeWindow, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblTimeWindows, "id")
	if err != nil {
		return nil, fmt.Errorf("list time windows: %w", err)
	}

	var windows []models.TimeWindow
	for raw := it.Next(); raw != nil; raw = it.Next() {
		window := raw.(*models.TimeWindow)
		if !window.Overlaps(filter.From, filter.To) {
			continue
		}
		if filter.EmployeeID != nil && window.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.ProjectID != nil && window.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.TaskID != nil && window.TaskID != *filter.TaskID {
			continue
		}
		windows = append(windows, *window)
	}
	return windows, nil
}

// SumByEmployeeAndTask returns the total recorded duration of the employee
// on the task.
func (r *TimeWindowRepository) SumByEmployeeAndTask(_ context.Context, employeeID, taskID string) (time.Duration, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblTimeWindows, "employee_id", employeeID)
	if err != nil {
		return 0, fmt.Errorf("list windows by employee: %w", err)
	}

	var total time.Duration
	for raw := it.Next(); raw != nil; raw = it.Next() {
		window := raw.(*models.TimeWindow)
		if window.TaskID != taskID {
			continue
		}
		total += window.Duration()
	}
	return total, nil
}

// CountByProject counts ledger entries anchored to the project.
func (r *TimeWindowRepository) CountByProject(_ context.Context, projectID string) (int64, error) {
	return r.count("project_id", projectID)
}

// CountByTask counts ledger entries anchored to the task.
func (r *TimeWindowRepository) CountByTask(_ context.Context, taskID string) (int64, error) {
	return r.count("task_id", taskID)
}

// BulkUpdate applies the update to every window matching employeeID and/or
// projectID.
func (r *TimeWindowRepository) BulkUpdate(_ context.Context, employeeID, projectID *string, update repository.TimeWindowBulkUpdate) (int64, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tblTimeWindows, "id")
	if err != nil {
		return 0, fmt.Errorf("list time windows: %w", err)
	}

	var matched []*models.TimeWindow
	for raw := it.Next(); raw != nil; raw = it.Next() {
		window := raw.(*models.TimeWindow)
		if employeeID != nil && window.EmployeeID != *employeeID {
			continue
		}
		if projectID != nil && window.ProjectID != *projectID {
			continue
		}
		matched = append(matched, window)
	}

	var modified int64
	for _, window := range matched {
		changed := *window
		if update.Note != nil {
			changed.Note = *update.Note
		}
		if update.Billable != nil {
			changed.Billable = *update.Billable
		}
		if update.Paid != nil {
			changed.Paid = *update.Paid
		}
		if changed == *window {
			continue
		}
		if err := txn.Insert(tblTimeWindows, &changed); err != nil {
			return 0, fmt.Errorf("update time window: %w", err)
		}
		modified++
	}
	txn.Commit()
	return modified, nil
}

func (r *TimeWindowRepository) count(index, value string) (int64, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblTimeWindows, index, value)
	if err != nil {
		return 0, fmt.Errorf("list time windows: %w", err)
	}

	var count int64
	for raw := it.Next(); raw != nil; raw = it.Next() {
		count++
	}
	return count, nil
}
