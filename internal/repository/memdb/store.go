// Package memdb implements the repository interfaces on an in-memory
// database. It backs tests and single-process deployments; the version
// checks behave exactly like the MongoDB store's conditional updates.
package memdb

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/t3labs/time-tracker-api/internal/repository"
)

var (
	tblEmployees   = "employees"
	tblProjects    = "projects"
	tblTasks       = "tasks"
	tblTimeWindows = "time_windows"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblEmployees: {
			Name: tblEmployees,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"email": {
					Name:    "email",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Email"},
				},
				"activation_token": {
					Name:         "activation_token",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "ActivationToken"},
				},
			},
		},
		tblProjects: {
			Name: tblProjects,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"employees": {
					Name:         "employees",
					AllowMissing: true,
					Indexer:      &memdb.StringSliceFieldIndex{Field: "Employees"},
				},
			},
		},
		tblTasks: {
			Name: tblTasks,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"project_id": {
					Name:    "project_id",
					Indexer: &memdb.StringFieldIndex{Field: "ProjectID"},
				},
				"employees": {
					Name:         "employees",
					AllowMissing: true,
					Indexer:      &memdb.StringSliceFieldIndex{Field: "Employees"},
				},
			},
		},
		tblTimeWindows: {
			Name: tblTimeWindows,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"employee_id": {
					Name:    "employee_id",
					Indexer: &memdb.StringFieldIndex{Field: "EmployeeID"},
				},
				"project_id": {
					Name:    "project_id",
					Indexer: &memdb.StringFieldIndex{Field: "ProjectID"},
				},
				"task_id": {
					Name:    "task_id",
					Indexer: &memdb.StringFieldIndex{Field: "TaskID"},
				},
			},
		},
	},
}

// Store is an in-memory store.
type Store struct {
	db *memdb.MemDB
}

// New returns a new in-memory store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Repositories returns the repository set backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Employees:   &EmployeeRepository{db: s.db},
		Projects:    &ProjectRepository{db: s.db},
		Tasks:       &TaskRepository{db: s.db},
		TimeWindows: &TimeWindowRepository{db: s.db},
	}
}
