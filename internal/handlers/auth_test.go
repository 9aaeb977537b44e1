package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t3labs/time-tracker-api/internal/mailer"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/repository/memdb"
	"github.com/t3labs/time-tracker-api/internal/services"
	"github.com/t3labs/time-tracker-api/internal/token"
)

const testAdminKey = "test-admin-key"

type handlerTestEnv struct {
	router    *gin.Engine
	repos     repository.Repositories
	employees *services.EmployeeService
	auth      *services.AuthService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := memdb.New()
	require.NoError(t, err)

	repos := store.Repositories()
	logger := zap.NewNop()
	tokens := token.NewManager("test-secret", time.Hour)
	enforcer := services.NewEnforcer(repos.Employees, repos.Projects, repos.Tasks)

	authService := services.NewAuthService(repos.Employees, tokens)
	employeeService := services.NewEmployeeService(repos.Employees, enforcer, mailer.NewLogMailer(logger), logger)
	projectService := services.NewProjectService(repos.Projects, repos.Tasks, repos.TimeWindows, enforcer)
	taskService := services.NewTaskService(repos.Tasks, repos.Projects, repos.TimeWindows, enforcer)
	trackingService := services.NewTimeTrackingService(repos.TimeWindows, repos.Tasks, repos.Projects, repos.Employees)
	analyticsService := services.NewAnalyticsService(repos.TimeWindows, repos.Projects, repos.Tasks, repos.Employees)

	auth := middleware.NewAuthenticator(testAdminKey, tokens, repos.Employees)
	authHandler := NewAuthHandler(authService)
	employeeHandler := NewEmployeeHandler(employeeService)
	projectHandler := NewProjectHandler(projectService)
	taskHandler := NewTaskHandler(taskService)
	trackingHandler := NewTimeTrackingHandler(trackingService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/activate", authHandler.Activate)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", auth.RequireEmployee(), authHandler.Me)

	admin := api.Group("/v1", auth.RequireAdmin())
	admin.POST("/employees", employeeHandler.Invite)
	admin.POST("/projects", projectHandler.Create)
	admin.POST("/tasks", taskHandler.Create)
	admin.GET("/analytics/window", analyticsHandler.Windows)

	api.GET("/v1/analytics/task-time", auth.RequireAdminOrEmployee(), analyticsHandler.TaskTime)

	me := api.Group("/v1", auth.RequireEmployee())
	me.POST("/time-entries", trackingHandler.Submit)
	me.GET("/me/tasks", taskHandler.ListMine)
	me.POST("/employees/:id/permissions", employeeHandler.UpdatePermissions)

	return handlerTestEnv{
		router:    r,
		repos:     repos,
		employees: employeeService,
		auth:      authService,
	}
}

func (env handlerTestEnv) request(t *testing.T, method, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// onboard invites and activates an employee, returning the record and a
// bearer token.
func (env handlerTestEnv) onboard(t *testing.T, name, email string) (*models.Employee, string) {
	t.Helper()
	ctx := context.Background()

	invited, err := env.employees.Invite(ctx, services.InviteEmployeeInput{Name: name, Email: email})
	require.NoError(t, err)

	employee, err := env.auth.Activate(ctx, invited.ActivationToken, "supersecret")
	require.NoError(t, err)

	bearer, _, err := env.auth.Login(ctx, email, "supersecret")
	require.NoError(t, err)
	return employee, bearer
}

func TestAuthHandler_ActivateAndLogin(t *testing.T) {
	env := setupHandlerTestEnv(t)

	invited, err := env.employees.Invite(context.Background(), services.InviteEmployeeInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/activate", map[string]string{
		"token":    invited.ActivationToken,
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "bearer", resp.TokenType)
}

func TestAuthHandler_Activate_InvalidToken(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/activate", map[string]string{
		"token":    "bogus",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_TOKEN", resp.Code)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.onboard(t, "Alice", "alice@example.com")

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupHandlerTestEnv(t)
	employee, bearer := env.onboard(t, "Alice", "alice@example.com")

	w := env.request(t, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + bearer,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, employee.ID, resp.ID)

	w = env.request(t, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
