// Package http provides the HTTP adapter for the application layer.
// It is a thin layer translating requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/service"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/export"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	applications service.ApplicationService,
	actions service.ActionService,
	queries service.QueryService,
	officers service.OfficerService,
	exporter *export.RegisterExporter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(applications, actions, queries, officers, exporter, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	{
		// Intake
		api.POST("/applications", h.CreateApplication)
		api.GET("/applications", h.ListApplications)
		api.GET("/applications/:id", h.GetApplication)
		api.GET("/applications/number/:number", h.GetApplicationByNumber)
		api.POST("/applications/:id/submit", h.SubmitApplication)
		api.POST("/applications/:id/resubmit", h.ResubmitApplication)
		api.POST("/applications/:id/close", h.CloseApplication)

		// Officer review actions
		api.POST("/applications/:id/junior-engineer/approve", h.ApproveJuniorEngineer)
		api.POST("/applications/:id/junior-engineer/reject", h.RejectJuniorEngineer)
		api.POST("/applications/:id/assistant-engineer/approve", h.ApproveAssistantEngineer)
		api.POST("/applications/:id/assistant-engineer/reject", h.RejectAssistantEngineer)
		api.POST("/applications/:id/executive-engineer/approve", h.ApproveExecutiveEngineer)
		api.POST("/applications/:id/executive-engineer/reject", h.RejectExecutiveEngineer)
		api.POST("/applications/:id/city-engineer/approve", h.ApproveCityEngineer)
		api.POST("/applications/:id/city-engineer/reject", h.RejectCityEngineer)
		api.POST("/applications/:id/clerk/process", h.ProcessClerk)
		api.POST("/applications/:id/executive-engineer/signature", h.CompleteExecutiveSignature)
		api.POST("/applications/:id/city-engineer/final-approve", h.ApproveCityEngineerFinal)

		// Payment gateway callback
		api.POST("/applications/:id/payment/confirm", h.ConfirmPayment)

		// Read models
		api.GET("/applications/:id/stage", h.GetWorkflowStage)
		api.GET("/applications/:id/history", h.GetWorkflowHistory)

		// Officer roster
		api.POST("/officers", h.OnboardOfficer)
		api.GET("/officers", h.ListOfficers)
		api.GET("/officers/:id", h.GetOfficer)
		api.PATCH("/officers/:id/active", h.SetOfficerActive)

		// Reports
		api.GET("/reports/applications.xlsx", h.ExportRegister)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
