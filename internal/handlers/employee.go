package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/services"
)

type EmployeeHandler struct {
	employees *services.EmployeeService
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

type inviteEmployeeRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Title string `json:"title"`
}

// Invite creates an invited employee and emails an activation link.
func (h *EmployeeHandler) Invite(c *gin.Context) {
	var req inviteEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "name and a valid email are required")
		return
	}

	employee, err := h.employees.Invite(c.Request.Context(), services.InviteEmployeeInput{
		Name:  req.Name,
		Email: req.Email,
		Title: req.Title,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// List returns employees, optionally filtered by status.
func (h *EmployeeHandler) List(c *gin.Context) {
	var status *models.EmployeeStatus
	if raw := c.Query("status"); raw != "" {
		s := models.EmployeeStatus(raw)
		switch s {
		case models.EmployeeStatusInvited, models.EmployeeStatusActive, models.EmployeeStatusDeactivated:
			status = &s
		default:
			apierrors.InvalidInput(c, "unknown status")
			return
		}
	}

	employees, err := h.employees.List(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// Get returns one employee by ID.
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

type updateEmployeeRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Title *string `json:"title"`
}

// Update changes an employee's profile fields.
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "invalid request body")
		return
	}

	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), services.UpdateEmployeeInput{
		Name:  req.Name,
		Email: req.Email,
		Title: req.Title,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

type updatePermissionsRequest struct {
	Computer    string `json:"computer" binding:"required"`
	Permissions struct {
		Accessibility        models.SystemPermissionState `json:"accessibility"`
		ScreenAudioRecording models.SystemPermissionState `json:"screen_audio_recording"`
	} `json:"permissions"`
}

// UpdatePermissions records the system permission snapshot the desktop app
// reports for one computer. Employees may only report their own permissions.
func (h *EmployeeHandler) UpdatePermissions(c *gin.Context) {
	employee, ok := middleware.GetCurrentEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "Could not validate credentials")
		return
	}
	if employee.ID != c.Param("id") {
		apierrors.Forbidden(c, "You do not have permission to perform this action")
		return
	}

	var req updatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "a computer name is required")
		return
	}

	updated, err := h.employees.UpdateSystemPermissions(c.Request.Context(), employee.ID, req.Computer, models.SystemPermissions{
		Accessibility:        req.Permissions.Accessibility,
		ScreenAudioRecording: req.Permissions.ScreenAudioRecording,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Deactivate retires an employee, detaching them from all projects and
// tasks first. Deactivating an already deactivated employee is a no-op.
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	employee, err := h.employees.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}
