package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightpm/internal/domain"
)

func (s *Server) handleListProjects(c *gin.Context) {
	projects := s.api.Projects()
	if projects == nil {
		projects = []domain.Project{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var in domain.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}

	project, err := s.api.CreateProject(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, gin.H{"project": project})
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.api.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users := s.api.Users()
	if users == nil {
		users = []domain.User{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"users": users})
}
