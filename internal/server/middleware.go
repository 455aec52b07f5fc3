package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insightpm/internal/session"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// requireSession rejects requests while the gate shows the login view.
func (s *Server) requireSession(c *gin.Context) {
	if s.api.View() != session.ViewApp {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in", "code": "AUTH_REQUIRED"})
		return
	}
	c.Next()
}
