package models

import "time"

// PayrollWildcard applies a payroll entry to every member of the project.
const PayrollWildcard = "*"

// PayrollEntry holds the billing rates for one employee on a project.
type PayrollEntry struct {
	BillRate         float64  `bson:"bill_rate" json:"bill_rate"`
	OvertimeBillRate *float64 `bson:"overtime_bill_rate,omitempty" json:"overtime_bill_rate,omitempty"`
}

// Project is a project document. Employees holds the member set; every
// member must reference a non-deactivated employee, and payroll keys other
// than the wildcard must be members.
type Project struct {
	ID          string                  `bson:"_id" json:"id"`
	Name        string                  `bson:"name" json:"name"`
	Description string                  `bson:"description,omitempty" json:"description,omitempty"`
	Billable    bool                    `bson:"billable" json:"billable"`
	Archived    bool                    `bson:"archived" json:"archived"`
	Employees   []string                `bson:"employees" json:"employees"`
	Payroll     map[string]PayrollEntry `bson:"payroll,omitempty" json:"payroll,omitempty"`
	Statuses    []string                `bson:"statuses" json:"statuses"`
	Priorities  []string                `bson:"priorities" json:"priorities"`
	CreatorID   string                  `bson:"creator_id" json:"creator_id"`
	CreatedAt   time.Time               `bson:"created_at" json:"created_at"`

	Version int64 `bson:"version" json:"-"`
}

// DefaultStatuses and DefaultPriorities seed new projects.
var (
	DefaultStatuses   = []string{"To Do", "In Progress", "Done"}
	DefaultPriorities = []string{"Low", "Medium", "High"}
)

// HasMember reports whether employeeID is in the member set.
func (p *Project) HasMember(employeeID string) bool {
	for _, id := range p.Employees {
		if id == employeeID {
			return true
		}
	}
	return false
}
