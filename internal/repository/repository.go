package repository

import (
	"context"
	"errors"
	"time"

	"github.com/t3labs/time-tracker-api/internal/models"
)

// Store errors. The backing store only guarantees per-document atomicity, so
// mutable documents carry a version and updates are conditional on it.
var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrVersionConflict is returned when a conditional update lost a race
	// with a concurrent writer. Callers re-fetch and retry.
	ErrVersionConflict = errors.New("document version conflict")

	// ErrDuplicateEmail is returned when an employee email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrOverlap is returned when a ledger insert would intersect an
	// existing window of the same employee.
	ErrOverlap = errors.New("overlapping time window")
)

// EmployeeFilter holds filtering options for listing employees.
type EmployeeFilter struct {
	Status *models.EmployeeStatus
}

// EmployeeRepository defines the interface for employee data access.
type EmployeeRepository interface {
	// Create inserts a new employee. Fails with ErrDuplicateEmail if the
	// email is already taken.
	Create(ctx context.Context, employee *models.Employee) error

	// FindByID finds an employee by ID.
	FindByID(ctx context.Context, id string) (*models.Employee, error)

	// FindByEmail finds an employee by email.
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)

	// FindByActivationToken finds an invited employee by activation token.
	FindByActivationToken(ctx context.Context, token string) (*models.Employee, error)

	// List retrieves employees matching the filter.
	List(ctx context.Context, filter EmployeeFilter) ([]models.Employee, error)

	// Update writes the employee back conditionally on its version and
	// bumps the version on success. Fails with ErrVersionConflict if a
	// concurrent writer got there first.
	Update(ctx context.Context, employee *models.Employee) error
}

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// Create inserts a new project.
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID.
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// List retrieves projects, skipping archived ones unless asked.
	List(ctx context.Context, includeArchived bool) ([]models.Project, error)

	// ListByMember retrieves every project whose member set contains the
	// employee.
	ListByMember(ctx context.Context, employeeID string) ([]models.Project, error)

	// Update writes the project back conditionally on its version.
	Update(ctx context.Context, project *models.Project) error

	// Delete removes a project document.
	Delete(ctx context.Context, id string) error
}

// TaskFilter holds filtering options for listing tasks.
type TaskFilter struct {
	ProjectID  *string
	AssigneeID *string
}

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	// Create inserts a new task.
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID.
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks matching the filter.
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update writes the task back conditionally on its version.
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task document.
	Delete(ctx context.Context, id string) error
}

// TimeWindowFilter selects ledger entries intersecting [From, To) with
// optional reference filters.
type TimeWindowFilter struct {
	From       time.Time
	To         time.Time
	EmployeeID *string
	ProjectID  *string
	TaskID     *string
}

// TimeWindowBulkUpdate holds the fields an admin may change on existing
// ledger entries. Interval and reference fields are immutable and therefore
// absent here.
type TimeWindowBulkUpdate struct {
	Note     *string
	Billable *bool
	Paid     *bool
}

// TimeWindowRepository defines the interface for the append-only time
// window ledger.
type TimeWindowRepository interface {
	// CreateExclusive appends a ledger entry, failing with ErrOverlap if
	// the employee already has a window intersecting [Start, End). The
	// check and the insert are one atomic store operation, so two
	// concurrent submissions of the same interval cannot both land.
	CreateExclusive(ctx context.Context, window *models.TimeWindow) error

	// ListIntersecting retrieves windows intersecting the filter range.
	ListIntersecting(ctx context.Context, filter TimeWindowFilter) ([]models.TimeWindow, error)

	// SumByEmployeeAndTask returns the total recorded duration of the
	// employee on the task across the whole ledger.
	SumByEmployeeAndTask(ctx context.Context, employeeID, taskID string) (time.Duration, error)

	// CountByProject counts ledger entries anchored to the project.
	CountByProject(ctx context.Context, projectID string) (int64, error)

	// CountByTask counts ledger entries anchored to the task.
	CountByTask(ctx context.Context, taskID string) (int64, error)

	// BulkUpdate applies the update to every window matching employeeID
	// and/or projectID and returns the number of modified entries.
	BulkUpdate(ctx context.Context, employeeID, projectID *string, update TimeWindowBulkUpdate) (int64, error)
}

// Repositories bundles the four collections a store must provide.
type Repositories struct {
	Employees   EmployeeRepository
	Projects    ProjectRepository
	Tasks       TaskRepository
	TimeWindows TimeWindowRepository
}
