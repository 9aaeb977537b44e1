package models

import "time"

// TimeWindow is one submitted interval of tracked time. Ledger entries are
// append-only: the interval and its employee/task/project references never
// change once persisted. ProjectID is denormalized from the task at
// submission time.
type TimeWindow struct {
	ID         string    `bson:"_id" json:"id"`
	EmployeeID string    `bson:"employee_id" json:"employee_id"`
	TaskID     string    `bson:"task_id" json:"task_id"`
	ProjectID  string    `bson:"project_id" json:"project_id"`
	Start      time.Time `bson:"start" json:"start"`
	End        time.Time `bson:"end" json:"end"`

	Note     string `bson:"note,omitempty" json:"note,omitempty"`
	Computer string `bson:"computer,omitempty" json:"computer,omitempty"`
	OS       string `bson:"os,omitempty" json:"os,omitempty"`

	Billable bool `bson:"billable" json:"billable"`
	Paid     bool `bson:"paid" json:"paid"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Duration returns the tracked length of the window.
func (w *TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether the window intersects [start, end).
func (w *TimeWindow) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && w.End.After(start)
}
