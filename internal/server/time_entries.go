package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightpm/internal/domain"
	"insightpm/internal/services"
)

// handleListTimeEntries returns entries newest first, optionally narrowed by
// task_id and user_id.
func (s *Server) handleListTimeEntries(c *gin.Context) {
	entries := s.api.TimeEntries(c.Query("task_id"), c.Query("user_id"))
	if entries == nil {
		entries = []services.TimeEntryWithTask{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"time_entries": entries})
}

// handleLogTime records hours against a task, for the signed-in user unless
// user_id is given.
func (s *Server) handleLogTime(c *gin.Context) {
	var in domain.TimeEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}

	entry, err := s.api.LogTime(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, gin.H{"time_entry": entry})
}

func (s *Server) handleDeleteTimeEntry(c *gin.Context) {
	if err := s.api.DeleteTimeEntry(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
