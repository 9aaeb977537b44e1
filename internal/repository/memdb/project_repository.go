package memdb

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
)

// ProjectRepository is an in-memory implementation of
// repository.ProjectRepository.
type ProjectRepository struct {
	db *memdb.MemDB
}

// Create inserts a new project document.
func (r *ProjectRepository) Create(_ context.Context, project *models.Project) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	stored := *project
	if err := txn.Insert(tblProjects, &stored); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	txn.Commit()
	return nil
}

// FindByID finds a project by ID.
func (r *ProjectRepository) FindByID(_ context.Context, id string) (*models.Project, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblProjects, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}

	project := *raw.(*models.Project)
	return &project, nil
}

// List retrieves projects, skipping archived ones unless asked.
func (r *ProjectRepository) List(_ context.Context, includeArchived bool) ([]models.Project, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblProjects, "id")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []models.Project
	for raw := it.Next(); raw != nil; raw = it.Next() {
		project := raw.(*models.Project)
		if project.Archived && !includeArchived {
			continue
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// ListByMember retrieves every project whose member set contains the
// employee.
func (r *ProjectRepository) ListByMember(_ context.Context, employeeID string) ([]models.Project, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblProjects, "employees", employeeID)
	if err != nil {
		return nil, fmt.Errorf("list projects by member: %w", err)
	}

	var projects []models.Project
	for raw := it.Next(); raw != nil; raw = it.Next() {
		projects = append(projects, *raw.(*models.Project))
	}
	return projects, nil
}

// Update writes the project back conditionally on its version.
func (r *ProjectRepository) Update(_ context.Context, project *models.Project) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblProjects, "id", project.ID)
	if err != nil {
		return fmt.Errorf("find project: %w", err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	if raw.(*models.Project).Version != project.Version {
		return repository.ErrVersionConflict
	}

	stored := *project
	stored.Version = project.Version + 1
	if err := txn.Insert(tblProjects, &stored); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	txn.Commit()

	project.Version = stored.Version
	return nil
}

// Delete removes a project document.
func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblProjects, "id", id)
	if err != nil {
		return fmt.Errorf("find project: %w", err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	if err := txn.Delete(tblProjects, raw); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	txn.Commit()
	return nil
}
