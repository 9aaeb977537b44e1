package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/services"
)

type TimeTrackingHandler struct {
	tracking *services.TimeTrackingService
}

func NewTimeTrackingHandler(tracking *services.TimeTrackingService) *TimeTrackingHandler {
	return &TimeTrackingHandler{tracking: tracking}
}

type submitTimeWindowRequest struct {
	TaskID   string    `json:"task_id" binding:"required"`
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Note     string    `json:"note"`
	Computer string    `json:"computer"`
	OS       string    `json:"os"`
}

// Submit records a worked interval for the authenticated employee.
func (h *TimeTrackingHandler) Submit(c *gin.Context) {
	employee, ok := middleware.GetCurrentEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req submitTimeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "task_id, start and end are required")
		return
	}

	window, err := h.tracking.Submit(c.Request.Context(), services.SubmitTimeWindowInput{
		EmployeeID: employee.ID,
		TaskID:     req.TaskID,
		Start:      req.Start,
		End:        req.End,
		Note:       req.Note,
		Computer:   req.Computer,
		OS:         req.OS,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, window)
}

type bulkUpdateRequest struct {
	EmployeeID *string `json:"employee_id"`
	ProjectID  *string `json:"project_id"`
	Note       *string `json:"note"`
	Billable   *bool   `json:"billable"`
	Paid       *bool   `json:"paid"`
}

type bulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// BulkUpdate applies the same field changes to every window matching the
// employee and/or project filter.
func (h *TimeTrackingHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "invalid request body")
		return
	}

	count, err := h.tracking.BulkUpdate(c.Request.Context(), services.BulkUpdateInput{
		EmployeeID: req.EmployeeID,
		ProjectID:  req.ProjectID,
		Note:       req.Note,
		Billable:   req.Billable,
		Paid:       req.Paid,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkUpdateResponse{Updated: count})
}
