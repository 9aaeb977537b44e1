package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// queryRange parses the required RFC 3339 from/to query parameters.
func queryRange(c *gin.Context) (from, to time.Time, ok bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidRange, "from must be an RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidRange, "to must be an RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ProjectTime reports worked time per employee on one project over a range.
func (h *AnalyticsHandler) ProjectTime(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		apierrors.InvalidInput(c, "project_id is required")
		return
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	report, err := h.analytics.ByProject(c.Request.Context(), projectID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TaskTime reports one employee's total time on one task. Admins may query
// any employee; an employee may only query their own time.
func (h *AnalyticsHandler) TaskTime(c *gin.Context) {
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		apierrors.InvalidInput(c, "employee_id is required")
		return
	}
	taskID := c.Query("task_id")
	if taskID == "" {
		apierrors.InvalidInput(c, "task_id is required")
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Could not validate credentials")
		return
	}
	if principal.Kind == middleware.PrincipalEmployee && principal.EmployeeID != employeeID {
		apierrors.Forbidden(c, "You do not have permission to access this data")
		return
	}

	report, err := h.analytics.ByTask(c.Request.Context(), employeeID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Windows returns the raw ledger entries in a range, optionally limited to
// one employee.
func (h *AnalyticsHandler) Windows(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	var employeeID *string
	if id := c.Query("employee_id"); id != "" {
		employeeID = &id
	}

	windows, err := h.analytics.Windows(c.Request.Context(), from, to, employeeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

// EmployeeTime reports one employee's worked time per project over a range.
func (h *AnalyticsHandler) EmployeeTime(c *gin.Context) {
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		apierrors.InvalidInput(c, "employee_id is required")
		return
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	report, err := h.analytics.ByEmployee(c.Request.Context(), employeeID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
