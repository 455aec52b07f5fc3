package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insightpm/internal/errors"
)

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	return errors.HTTPStatus(err)
}

// respondError logs server-side failures and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || errors.ShouldLogError(err) {
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": errors.GetUserMessage(err), "code": errors.GetErrorCode(err)})
}

// badRequest reports a malformed request body.
func (s *Server) badRequest(c *gin.Context, err error) {
	s.respondError(c, errors.NewValidationError("invalid request body: "+err.Error(), err))
}
