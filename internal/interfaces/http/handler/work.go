package handler

import (
	workapp "github.com/agencydesk/backend/internal/application/work"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// WorkHandler serves /projects and /tasks
type WorkHandler struct {
	BaseHandler
	projects *workapp.ProjectService
	tasks    *workapp.TaskService
}

// NewWorkHandler creates a WorkHandler
func NewWorkHandler(projects *workapp.ProjectService, tasks *workapp.TaskService) *WorkHandler {
	return &WorkHandler{projects: projects, tasks: tasks}
}

// RegisterRoutes mounts the project and task routes
func (h *WorkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/projects").
		GET("", h.ListProjects).
		GET("/stats", h.ProjectStats).
		GET("/:id", h.GetProject).
		POST("", h.CreateProject).
		PUT("/:id", h.UpdateProject).
		DELETE("/:id", h.DeleteProject).
		POST("/:id/restore", h.RestoreProject).
		DELETE("/:id/permanent", h.PermanentlyDeleteProject).
		RegisterRoutes(rg)

	router.NewDomainGroup("/tasks").
		GET("", h.ListTasks).
		GET("/stats", h.TaskStats).
		GET("/:id", h.GetTask).
		POST("", h.CreateTask).
		PUT("/:id", h.UpdateTask).
		PATCH("/:id/status", h.UpdateTaskStatus).
		DELETE("/:id", h.DeleteTask).
		RegisterRoutes(rg)
}

// ListProjects returns a page of projects
func (h *WorkHandler) ListProjects(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter workapp.ProjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.projects.ListProjects(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetProject returns one project
func (h *WorkHandler) GetProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// CreateProject adds a project
func (h *WorkHandler) CreateProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req workapp.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// UpdateProject applies a partial update
func (h *WorkHandler) UpdateProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}
	var req workapp.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// DeleteProject archives a project
func (h *WorkHandler) DeleteProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RestoreProject brings an archived project back
func (h *WorkHandler) RestoreProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.RestoreProject(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// PermanentlyDeleteProject removes a project for good
func (h *WorkHandler) PermanentlyDeleteProject(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projects.PermanentlyDeleteProject(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ProjectStats returns project counts and budget totals
func (h *WorkHandler) ProjectStats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.projects.GetProjectStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListTasks returns a page of tasks
func (h *WorkHandler) ListTasks(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter workapp.TaskListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.tasks.ListTasks(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetTask returns one task
func (h *WorkHandler) GetTask(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// CreateTask adds a task
func (h *WorkHandler) CreateTask(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req workapp.CreateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// UpdateTask applies a partial update
func (h *WorkHandler) UpdateTask(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "task")
	if !ok {
		return
	}
	var req workapp.UpdateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// UpdateTaskStatus moves a task on the board
func (h *WorkHandler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "task")
	if !ok {
		return
	}
	var req workapp.UpdateTaskStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c.Request.Context(), userID, id, work.TaskStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// DeleteTask removes a task
func (h *WorkHandler) DeleteTask(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TaskStats returns task counts
func (h *WorkHandler) TaskStats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.tasks.GetTaskStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
