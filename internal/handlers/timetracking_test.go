package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/t3labs/time-tracker-api/internal/models"
)

func TestTimeTrackingHandler_Submit(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	alice, bearer := env.onboard(t, "Alice", "alice@example.com")

	project := &models.Project{ID: "p1", Name: "Website", Billable: true, Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Projects.Create(ctx, project))
	task := &models.Task{ID: "t1", Name: "Design", ProjectID: project.ID, Billable: true, Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Tasks.Create(ctx, task))

	start := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	w := env.request(t, http.MethodPost, "/api/v1/time-entries", map[string]any{
		"task_id": task.ID,
		"start":   start.Format(time.RFC3339),
		"end":     start.Add(time.Hour).Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusCreated, w.Code)

	var window models.TimeWindow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &window))
	require.Equal(t, alice.ID, window.EmployeeID)
	require.Equal(t, project.ID, window.ProjectID)

	// A second submission over the same interval conflicts
	w = env.request(t, http.MethodPost, "/api/v1/time-entries", map[string]any{
		"task_id": task.ID,
		"start":   start.Add(30 * time.Minute).Format(time.RFC3339),
		"end":     start.Add(90 * time.Minute).Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "CONFLICT", resp.Code)
}

func TestTimeTrackingHandler_Submit_InvalidRange(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	alice, bearer := env.onboard(t, "Alice", "alice@example.com")

	project := &models.Project{ID: "p1", Name: "Website", Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Projects.Create(ctx, project))
	task := &models.Task{ID: "t1", Name: "Design", ProjectID: project.ID, Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Tasks.Create(ctx, task))

	start := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	w := env.request(t, http.MethodPost, "/api/v1/time-entries", map[string]any{
		"task_id": task.ID,
		"start":   start.Format(time.RFC3339),
		"end":     start.Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_RANGE", resp.Code)
}

func TestTimeTrackingHandler_Submit_RequiresAuth(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/time-entries", map[string]any{
		"task_id": "t1",
		"start":   "2026-02-03T09:00:00Z",
		"end":     "2026-02-03T10:00:00Z",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskHandler_ListMine(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	alice, bearer := env.onboard(t, "Alice", "alice@example.com")

	project := &models.Project{ID: "p1", Name: "Website", Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Projects.Create(ctx, project))
	mine := &models.Task{ID: "t1", Name: "Design", ProjectID: project.ID, Employees: []string{alice.ID}}
	require.NoError(t, env.repos.Tasks.Create(ctx, mine))
	other := &models.Task{ID: "t2", Name: "Backend", ProjectID: project.ID}
	require.NoError(t, env.repos.Tasks.Create(ctx, other))

	w := env.request(t, http.MethodGet, "/api/v1/me/tasks", nil, map[string]string{
		"Authorization": "Bearer " + bearer,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, mine.ID, tasks[0].ID)
}

func TestEmployeeHandler_Invite_RequiresAdminKey(t *testing.T) {
	env := setupHandlerTestEnv(t)

	payload := map[string]string{"name": "Alice", "email": "alice@example.com"}

	w := env.request(t, http.MethodPost, "/api/v1/employees", payload, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/employees", payload, map[string]string{
		"X-API-Key": testAdminKey,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// A duplicate invitation conflicts
	w = env.request(t, http.MethodPost, "/api/v1/employees", payload, map[string]string{
		"X-API-Key": testAdminKey,
	})
	require.Equal(t, http.StatusConflict, w.Code)
}
