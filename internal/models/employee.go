package models

import "time"

type EmployeeStatus string

const (
	EmployeeStatusInvited     EmployeeStatus = "invited"
	EmployeeStatusActive      EmployeeStatus = "active"
	EmployeeStatusDeactivated EmployeeStatus = "deactivated"
)

// SystemPermissionState is a desktop permission grant state as reported by
// the tracking app.
type SystemPermissionState string

const (
	PermissionAuthorized   SystemPermissionState = "authorized"
	PermissionDenied       SystemPermissionState = "denied"
	PermissionUndetermined SystemPermissionState = "undetermined"
)

// SystemPermissions reports what the desktop tracking app may do on one
// machine.
type SystemPermissions struct {
	Accessibility        SystemPermissionState `bson:"accessibility" json:"accessibility"`
	ScreenAudioRecording SystemPermissionState `bson:"screen_audio_recording" json:"screen_audio_recording"`
}

// ComputerPermissions is the permission snapshot reported by one computer.
// An employee keeps one snapshot per computer name, replaced on re-report.
type ComputerPermissions struct {
	Computer    string            `bson:"computer" json:"computer"`
	Permissions SystemPermissions `bson:"permissions" json:"permissions"`
	ReportedAt  time.Time         `bson:"reported_at" json:"reported_at"`
}

// Employee is an employee document. Employees are created in the invited
// state, become active once they set a password via their activation token,
// and are never hard-deleted.
type Employee struct {
	ID     string         `bson:"_id" json:"id"`
	Name   string         `bson:"name" json:"name"`
	Email  string         `bson:"email" json:"email"`
	Title  string         `bson:"title,omitempty" json:"title,omitempty"`
	Status EmployeeStatus `bson:"status" json:"status"`

	HashedPassword      string     `bson:"hashed_password,omitempty" json:"-"`
	ActivationToken     string     `bson:"activation_token,omitempty" json:"-"`
	ActivationExpiresAt *time.Time `bson:"activation_expires_at,omitempty" json:"-"`

	// Projects mirrors project membership so the employee side of the
	// binding can be read without scanning the projects collection.
	Projects []string `bson:"projects" json:"projects"`

	// SystemPermissions holds the latest permission snapshot per computer
	// the employee's tracking app runs on.
	SystemPermissions []ComputerPermissions `bson:"system_permissions,omitempty" json:"system_permissions,omitempty"`

	InvitedAt     time.Time  `bson:"invited_at" json:"invited_at"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	DeactivatedAt *time.Time `bson:"deactivated_at,omitempty" json:"deactivated_at,omitempty"`

	Version int64 `bson:"version" json:"-"`
}

// IsMemberOf reports whether the employee's mirror list contains projectID.
func (e *Employee) IsMemberOf(projectID string) bool {
	for _, id := range e.Projects {
		if id == projectID {
			return true
		}
	}
	return false
}
