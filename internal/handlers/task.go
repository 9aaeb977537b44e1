package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/middleware"
	"github.com/t3labs/time-tracker-api/internal/services"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Name        string   `json:"name" binding:"required"`
	ProjectID   string   `json:"project_id" binding:"required"`
	Description string   `json:"description"`
	Billable    *bool    `json:"billable"`
	Employees   []string `json:"employees"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
}

// Create creates a task under a project. Assignees must already be project
// members.
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "name and project_id are required")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), services.CreateTaskInput{
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Billable:    req.Billable,
		Employees:   req.Employees,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// List returns tasks, optionally scoped to one project via ?project_id=.
func (h *TaskHandler) List(c *gin.Context) {
	var projectID *string
	if raw := c.Query("project_id"); raw != "" {
		projectID = &raw
	}

	tasks, err := h.tasks.List(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListMine returns the tasks assigned to the authenticated employee.
func (h *TaskHandler) ListMine(c *gin.Context) {
	employee, ok := middleware.GetCurrentEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.tasks.ListForEmployee(c.Request.Context(), employee.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get returns one task by ID.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Name        *string   `json:"name"`
	ProjectID   *string   `json:"project_id"`
	Description *string   `json:"description"`
	Billable    *bool     `json:"billable"`
	Employees   *[]string `json:"employees"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
}

// Update changes a task's details. Moving a task to another project is
// rejected.
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "invalid request body")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), services.UpdateTaskInput{
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Billable:    req.Billable,
		Employees:   req.Employees,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AddAssignee assigns a project member to the task.
func (h *TaskHandler) AddAssignee(c *gin.Context) {
	task, err := h.tasks.AddAssignee(c.Request.Context(), c.Param("id"), c.Param("employeeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RemoveAssignee removes an employee from the task's assignee set.
func (h *TaskHandler) RemoveAssignee(c *gin.Context) {
	task, err := h.tasks.RemoveAssignee(c.Request.Context(), c.Param("id"), c.Param("employeeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes a task. Deletion is blocked while any time window
// references the task.
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
