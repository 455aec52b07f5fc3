package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightpm/internal/remote"
	"insightpm/internal/session"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	View       session.View `json:"view"`
	User       *remote.User `json:"user,omitempty"`
	LoginError string       `json:"login_error,omitempty"`
	Notice     string       `json:"notice,omitempty"`
}

func (s *Server) sessionState() sessionResponse {
	resp := sessionResponse{
		View:       s.api.View(),
		LoginError: s.api.LoginError(),
		Notice:     s.api.Notice(),
	}
	if sess := s.api.Session(); sess != nil {
		user := sess.User
		resp.User = &user
	}
	return resp
}

// handleSession reports which view the client should render.
func (s *Server) handleSession(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.sessionState())
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.api.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.sessionState())
}

func (s *Server) handleSignUp(c *gin.Context) {
	var form session.SignUpForm
	if err := c.ShouldBindJSON(&form); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.api.SignUp(c.Request.Context(), form); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, s.sessionState())
}

func (s *Server) handleSignOut(c *gin.Context) {
	if err := s.api.SignOut(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.sessionState())
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.api.ResetPassword(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.sessionState())
}

// handleRefresh is the manual full refetch.
func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.api.Refresh(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "refreshed"})
}
