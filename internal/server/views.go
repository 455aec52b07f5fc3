package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleDashboard(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.api.Dashboard())
}

func (s *Server) handleBoard(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"columns": s.api.Board()})
}

func (s *Server) handleTimeline(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.api.Timeline())
}

func (s *Server) handleResources(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.api.Resources())
}

func (s *Server) handleAnalytics(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.api.Analytics())
}

func (s *Server) handleTimeLog(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.api.TimeLog())
}
