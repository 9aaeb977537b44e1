package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/t3labs/time-tracker-api/internal/models"
)

func TestTaskService_Create(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)

	task, err := env.tasks.Create(ctx, CreateTaskInput{
		Name:      "Design",
		ProjectID: project.ID,
		Employees: []string{alice.ID},
	})
	require.NoError(t, err)
	require.Equal(t, models.DefaultTaskStatus, task.Status)
	require.Equal(t, models.DefaultTaskPriority, task.Priority)
	// Billable defaults to the project's flag
	require.True(t, task.Billable)
}

func TestTaskService_Create_UnknownProject(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.tasks.Create(context.Background(), CreateTaskInput{
		Name:      "Design",
		ProjectID: "missing",
	})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestTaskService_Create_AssigneeMustBeMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	carol := env.inviteAndActivate(t, "Carol", "carol@example.com")
	project := env.createProject(t, "Website", alice.ID)

	_, err := env.tasks.Create(ctx, CreateTaskInput{
		Name:      "Design",
		ProjectID: project.ID,
		Employees: []string{carol.ID},
	})
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestTaskService_Update(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID)

	status := "In Progress"
	assignees := []string{alice.ID}
	updated, err := env.tasks.Update(ctx, task.ID, UpdateTaskInput{
		Status:    &status,
		Employees: &assignees,
	})
	require.NoError(t, err)
	require.Equal(t, "In Progress", updated.Status)
	require.Equal(t, []string{alice.ID}, updated.Employees)
}

func TestTaskService_Update_ProjectIsImmutable(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	website := env.createProject(t, "Website", alice.ID)
	mobile := env.createProject(t, "Mobile", alice.ID)
	task := env.createTask(t, "Design", website.ID)

	_, err := env.tasks.Update(ctx, task.ID, UpdateTaskInput{ProjectID: &mobile.ID})
	require.ErrorIs(t, err, ErrTaskProjectImmutable)

	// Re-stating the current project is fine
	_, err = env.tasks.Update(ctx, task.ID, UpdateTaskInput{ProjectID: &website.ID})
	require.NoError(t, err)
}

func TestTaskService_Update_AssigneesRevalidated(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	carol := env.inviteAndActivate(t, "Carol", "carol@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID)

	assignees := []string{carol.ID}
	_, err := env.tasks.Update(ctx, task.ID, UpdateTaskInput{Employees: &assignees})
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestTaskService_AddAssignee(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID)

	updated, err := env.tasks.AddAssignee(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []string{alice.ID}, updated.Employees)

	// Assigning twice is a no-op
	updated, err = env.tasks.AddAssignee(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []string{alice.ID}, updated.Employees)
}

func TestTaskService_AddAssignee_RejectsNonMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	carol := env.inviteAndActivate(t, "Carol", "carol@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID)

	_, err := env.tasks.AddAssignee(ctx, task.ID, carol.ID)
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestTaskService_RemoveAssignee(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID, alice.ID)

	updated, err := env.tasks.RemoveAssignee(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.Empty(t, updated.Employees)

	// Removing a non-assignee is a no-op
	_, err = env.tasks.RemoveAssignee(ctx, task.ID, alice.ID)
	require.NoError(t, err)
}

func TestTaskService_ListForEmployee(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	bob := env.inviteAndActivate(t, "Bob", "bob@example.com")
	project := env.createProject(t, "Website", alice.ID, bob.ID)
	design := env.createTask(t, "Design", project.ID, alice.ID)
	env.createTask(t, "Backend", project.ID, bob.ID)

	tasks, err := env.tasks.ListForEmployee(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, design.ID, tasks[0].ID)
}

func TestTaskService_Delete_BlockedByTimeWindows(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID, alice.ID)

	start := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	env.submitWindow(t, alice.ID, task.ID, start, start.Add(time.Hour))

	err := env.tasks.Delete(ctx, task.ID)
	require.ErrorIs(t, err, ErrTaskHasTimeWindows)
}

func TestTaskService_Delete(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	alice := env.inviteAndActivate(t, "Alice", "alice@example.com")
	project := env.createProject(t, "Website", alice.ID)
	task := env.createTask(t, "Design", project.ID)

	require.NoError(t, env.tasks.Delete(ctx, task.ID))

	_, err := env.tasks.Get(ctx, task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}
