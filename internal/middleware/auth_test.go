package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/repository/memdb"
	"github.com/t3labs/time-tracker-api/internal/token"
)

func setupAuthTestEnv(t *testing.T) (*Authenticator, *token.Manager, repository.EmployeeRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := memdb.New()
	require.NoError(t, err)

	employees := store.Repositories().Employees
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthenticator("admin-key", tokens, employees), tokens, employees
}

func performRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin(t *testing.T) {
	auth, _, _ := setupAuthTestEnv(t)

	r := gin.New()
	r.GET("/protected", auth.RequireAdmin(), func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		require.True(t, ok)
		require.Equal(t, PrincipalAdmin, principal.Kind)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, map[string]string{APIKeyHeader: "admin-key"})
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, map[string]string{APIKeyHeader: "wrong-key"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	_, tokens, employees := setupAuthTestEnv(t)
	auth := NewAuthenticator("", tokens, employees)

	r := gin.New()
	r.GET("/protected", auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, map[string]string{APIKeyHeader: ""})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireEmployee(t *testing.T) {
	auth, tokens, employees := setupAuthTestEnv(t)

	employee := &models.Employee{
		ID:     "employee-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		Status: models.EmployeeStatusActive,
	}
	require.NoError(t, employees.Create(context.Background(), employee))

	bearer, err := tokens.Generate(employee.ID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", auth.RequireEmployee(), func(c *gin.Context) {
		current, ok := GetCurrentEmployee(c)
		require.True(t, ok)
		require.Equal(t, employee.ID, current.ID)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireEmployee_DeactivatedLockedOut(t *testing.T) {
	auth, tokens, employees := setupAuthTestEnv(t)
	ctx := context.Background()

	employee := &models.Employee{
		ID:     "employee-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		Status: models.EmployeeStatusActive,
	}
	require.NoError(t, employees.Create(ctx, employee))

	bearer, err := tokens.Generate(employee.ID)
	require.NoError(t, err)

	// Deactivate after the token was issued
	employee.Status = models.EmployeeStatusDeactivated
	require.NoError(t, employees.Update(ctx, employee))

	r := gin.New()
	r.GET("/protected", auth.RequireEmployee(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminOrEmployee(t *testing.T) {
	auth, tokens, employees := setupAuthTestEnv(t)

	employee := &models.Employee{
		ID:     "employee-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		Status: models.EmployeeStatusActive,
	}
	require.NoError(t, employees.Create(context.Background(), employee))
	bearer, err := tokens.Generate(employee.ID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", auth.RequireAdminOrEmployee(), func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(principal.Kind))
	})

	// The admin key resolves to an admin principal
	w := performRequest(r, map[string]string{APIKeyHeader: "admin-key"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, string(PrincipalAdmin), w.Body.String())

	// A bearer token resolves to an employee principal
	w = performRequest(r, map[string]string{"Authorization": "Bearer " + bearer})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, string(PrincipalEmployee), w.Body.String())

	// A wrong admin key does not fall through as anonymous
	w = performRequest(r, map[string]string{APIKeyHeader: "wrong-key"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
