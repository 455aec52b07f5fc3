// Package server exposes the dashboard over a JSON HTTP API for the browser
// client.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"insightpm/internal/app"
	"insightpm/internal/config"
	"insightpm/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server provides HTTP handlers for the dashboard.
type Server struct {
	engine *gin.Engine
	api    app.API
	cfg    config.ServerConfig
	logger *zap.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(api app.API, cfg config.ServerConfig, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger).Named("server")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	srv := &Server{
		engine: router,
		api:    api,
		cfg:    cfg,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped with CORS for the configured origins.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.engine)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("dashboard API listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down dashboard API")
		return srv.Shutdown(shutdownCtx)
	}
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/session", s.handleSession)

		auth := api.Group("/auth")
		{
			auth.POST("/signin", s.handleSignIn)
			auth.POST("/signup", s.handleSignUp)
			auth.POST("/signout", s.handleSignOut)
			auth.POST("/reset", s.handleResetPassword)
		}

		private := api.Group("", s.requireSession)
		{
			private.POST("/refresh", s.handleRefresh)

			tasks := private.Group("/tasks")
			{
				tasks.GET("", s.handleListTasks)
				tasks.POST("", s.handleCreateTask)
				tasks.PUT(":id", s.handleUpdateTask)
				tasks.PATCH(":id/status", s.handleMoveTask)
				tasks.DELETE(":id", s.handleDeleteTask)
			}

			projects := private.Group("/projects")
			{
				projects.GET("", s.handleListProjects)
				projects.POST("", s.handleCreateProject)
				projects.DELETE(":id", s.handleDeleteProject)
			}

			private.GET("/users", s.handleListUsers)

			entries := private.Group("/time-entries")
			{
				entries.GET("", s.handleListTimeEntries)
				entries.POST("", s.handleLogTime)
				entries.DELETE(":id", s.handleDeleteTimeEntry)
			}

			views := private.Group("/views")
			{
				views.GET("/dashboard", s.handleDashboard)
				views.GET("/board", s.handleBoard)
				views.GET("/timeline", s.handleTimeline)
				views.GET("/resources", s.handleResources)
				views.GET("/analytics", s.handleAnalytics)
				views.GET("/timelog", s.handleTimeLog)
			}
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
