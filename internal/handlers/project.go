package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string                         `json:"name" binding:"required"`
	Description string                         `json:"description"`
	Billable    *bool                          `json:"billable"`
	Employees   []string                       `json:"employees"`
	Payroll     map[string]models.PayrollEntry `json:"payroll"`
}

// Create creates a project with an optional initial member set and payroll.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "name is required")
		return
	}

	project, err := h.projects.Create(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Billable:    req.Billable,
		Employees:   req.Employees,
		Payroll:     req.Payroll,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// List returns all non-archived projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get returns one project by ID.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type updateProjectRequest struct {
	Name        *string                         `json:"name"`
	Description *string                         `json:"description"`
	Billable    *bool                           `json:"billable"`
	Employees   *[]string                       `json:"employees"`
	Payroll     *map[string]models.PayrollEntry `json:"payroll"`
	Archived    *bool                           `json:"archived"`
}

// Update changes a project's details. Replacing the member set detaches
// removed members from the project's tasks as well.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidInput(c, "invalid request body")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Billable:    req.Billable,
		Employees:   req.Employees,
		Payroll:     req.Payroll,
		Archived:    req.Archived,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// AddMember adds an active employee to the project's member set.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, err := h.projects.AddMember(c.Request.Context(), c.Param("id"), c.Param("employeeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// RemoveMember removes an employee from the project, unassigning them from
// the project's tasks first.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, err := h.projects.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("employeeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Delete removes a project and its tasks. Deletion is blocked while any
// time window references the project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
