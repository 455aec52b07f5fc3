package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/services"
)

type moveRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// taskCriteria reads the list filters from the query string.
func taskCriteria(c *gin.Context) (services.SearchCriteria, error) {
	var criteria services.SearchCriteria
	if v, ok := c.GetQuery("status"); ok {
		status := domain.TaskStatus(v)
		criteria.Filter.Status = &status
	}
	if v, ok := c.GetQuery("priority"); ok {
		priority := domain.Priority(v)
		criteria.Filter.Priority = &priority
	}
	if v, ok := c.GetQuery("assignee_id"); ok {
		criteria.Filter.AssigneeID = &v
	}
	if v, ok := c.GetQuery("project_id"); ok {
		criteria.Filter.ProjectID = &v
	}
	if v, ok := c.GetQuery("tag"); ok {
		criteria.Filter.Tag = &v
	}
	if v, ok := c.GetQuery("q"); ok {
		criteria.Filter.Query = &v
	}

	sort, err := services.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return criteria, err
	}
	criteria.Sort = sort

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return criteria, errors.NewInvalidInputError("limit", v, "must be a non-negative integer")
		}
		criteria.Limit = limit
	}
	return criteria, nil
}

// handleListTasks returns the mirrored tasks, optionally filtered.
func (s *Server) handleListTasks(c *gin.Context) {
	criteria, err := taskCriteria(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	tasks := s.api.Tasks(criteria)
	if tasks == nil {
		tasks = []domain.Task{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask adds a task optimistically. The response carries the
// temporary id; the server id appears in the store once the insert settles.
func (s *Server) handleCreateTask(c *gin.Context) {
	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}
	if in.IsEdit() {
		s.respondError(c, errors.NewInvalidInputError("id", in.ID, "use PUT /api/tasks/:id to edit"))
		return
	}

	task, err := s.api.SaveTask(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, gin.H{"task": task})
}

// handleUpdateTask replaces the task's editable fields.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}
	in.ID = c.Param("id")

	task, err := s.api.SaveTask(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleMoveTask changes a task's board column.
func (s *Server) handleMoveTask(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	task, err := s.api.MoveTask(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.api.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
