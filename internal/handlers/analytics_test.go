package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/t3labs/time-tracker-api/internal/models"
)

func TestAnalyticsHandler_TaskTime(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	alice, aliceBearer := env.onboard(t, "Alice", "alice@example.com")
	bob, bobBearer := env.onboard(t, "Bob", "bob@example.com")

	project := &models.Project{ID: "p1", Name: "Website", Employees: []string{alice.ID, bob.ID}}
	require.NoError(t, env.repos.Projects.Create(ctx, project))
	task := &models.Task{ID: "t1", Name: "Design", ProjectID: project.ID, Employees: []string{alice.ID, bob.ID}}
	require.NoError(t, env.repos.Tasks.Create(ctx, task))

	start := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	w := env.request(t, http.MethodPost, "/api/v1/time-entries", map[string]any{
		"task_id": task.ID,
		"start":   start.Format(time.RFC3339),
		"end":     start.Add(2 * time.Hour).Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + aliceBearer})
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/analytics/task-time?employee_id=%s&task_id=%s", alice.ID, task.ID)

	// Admins may query any employee
	w = env.request(t, http.MethodGet, path, nil, map[string]string{"X-API-Key": testAdminKey})
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		EmployeeID   string  `json:"employee_id"`
		TotalSeconds float64 `json:"total_seconds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Equal(t, alice.ID, report.EmployeeID)
	require.Equal(t, float64(2*3600), report.TotalSeconds)

	// Employees may query their own time
	w = env.request(t, http.MethodGet, path, nil, map[string]string{"Authorization": "Bearer " + aliceBearer})
	require.Equal(t, http.StatusOK, w.Code)

	// But not anybody else's
	w = env.request(t, http.MethodGet, path, nil, map[string]string{"Authorization": "Bearer " + bobBearer})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyticsHandler_Windows(t *testing.T) {
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
		"end":     start.Add(time.Hour).Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/analytics/window?from=%s&to=%s",
		start.Format(time.RFC3339), start.Add(24*time.Hour).Format(time.RFC3339))

	w = env.request(t, http.MethodGet, path, nil, map[string]string{"X-API-Key": testAdminKey})
	require.Equal(t, http.StatusOK, w.Code)

	var windows []models.TimeWindow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &windows))
	require.Len(t, windows, 1)
	require.Equal(t, alice.ID, windows[0].EmployeeID)

	// The raw ledger is admin-only
	w = env.request(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
