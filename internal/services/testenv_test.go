package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t3labs/time-tracker-api/internal/mailer"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/repository/memdb"
	"github.com/t3labs/time-tracker-api/internal/token"
)

type serviceTestEnv struct {
	repos     repository.Repositories
	enforcer  *Enforcer
	auth      *AuthService
	employees *EmployeeService
	projects  *ProjectService
	tasks     *TaskService
	tracking  *TimeTrackingService
	analytics *AnalyticsService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	store, err := memdb.New()
	require.NoError(t, err)

	repos := store.Repositories()
	logger := zap.NewNop()
	enforcer := NewEnforcer(repos.Employees, repos.Projects, repos.Tasks)
	tokens := token.NewManager("test-secret", time.Hour)

	return serviceTestEnv{
		repos:     repos,
		enforcer:  enforcer,
		auth:      NewAuthService(repos.Employees, tokens),
		employees: NewEmployeeService(repos.Employees, enforcer, mailer.NewLogMailer(logger), logger),
		projects:  NewProjectService(repos.Projects, repos.Tasks, repos.TimeWindows, enforcer),
		tasks:     NewTaskService(repos.Tasks, repos.Projects, repos.TimeWindows, enforcer),
		tracking:  NewTimeTrackingService(repos.TimeWindows, repos.Tasks, repos.Projects, repos.Employees),
		analytics: NewAnalyticsService(repos.TimeWindows, repos.Projects, repos.Tasks, repos.Employees),
	}
}

// inviteAndActivate runs the full onboarding so the employee can hold
// memberships and submit time.
func (env serviceTestEnv) inviteAndActivate(t *testing.T, name, email string) *models.Employee {
	t.Helper()

	invited, err := env.employees.Invite(context.Background(), InviteEmployeeInput{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	require.Equal(t, models.EmployeeStatusInvited, invited.Status)

	activated, err := env.auth.Activate(context.Background(), invited.ActivationToken, "supersecret")
	require.NoError(t, err)
	require.Equal(t, models.EmployeeStatusActive, activated.Status)
	return activated
}

func (env serviceTestEnv) createProject(t *testing.T, name string, memberIDs ...string) *models.Project {
	t.Helper()

	project, err := env.projects.Create(context.Background(), CreateProjectInput{
		Name:      name,
		Employees: memberIDs,
	})
	require.NoError(t, err)
	return project
}

func (env serviceTestEnv) createTask(t *testing.T, name, projectID string, assigneeIDs ...string) *models.Task {
	t.Helper()

	task, err := env.tasks.Create(context.Background(), CreateTaskInput{
		Name:      name,
		ProjectID: projectID,
		Employees: assigneeIDs,
	})
	require.NoError(t, err)
	return task
}

func (env serviceTestEnv) submitWindow(t *testing.T, employeeID, taskID string, start, end time.Time) *models.TimeWindow {
	t.Helper()

	window, err := env.tracking.Submit(context.Background(), SubmitTimeWindowInput{
		EmployeeID: employeeID,
		TaskID:     taskID,
		Start:      start,
		End:        end,
	})
	require.NoError(t, err)
	return window
}
