package models

import "time"

// Task is a task document scoped to a parent project. ProjectID never
// changes after creation, and Employees (the assignee set) is always a
// subset of the parent project's member set.
type Task struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	ProjectID   string    `bson:"project_id" json:"project_id"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Billable    bool      `bson:"billable" json:"billable"`
	Employees   []string  `bson:"employees" json:"employees"`
	Status      string    `bson:"status" json:"status"`
	Priority    string    `bson:"priority" json:"priority"`
	CreatorID   string    `bson:"creator_id" json:"creator_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`

	Version int64 `bson:"version" json:"-"`
}

const (
	DefaultTaskStatus   = "To Do"
	DefaultTaskPriority = "Medium"
)

// HasAssignee reports whether employeeID is in the assignee set.
func (t *Task) HasAssignee(employeeID string) bool {
	for _, id := range t.Employees {
		if id == employeeID {
			return true
		}
	}
	return false
}
